package rules

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"cohort/internal/errs"
)

//go:embed sample_rules.toml
var sampleRules string

// Group lists alternative substrings; any one occurring in the tag value
// satisfies the group.
type Group []string

// TagRule is the ordered list of groups declared for one metadata tag.
// Every group must be satisfied for the owning category to match.
type TagRule []Group

// Category maps metadata tag keywords to their constraints.
type Category map[string]TagRule

// Set is an immutable rule set for one classification run.
type Set struct {
	categories map[string]Category
}

// New builds a Set from raw category definitions. The input map is copied.
func New(categories map[string]Category) (*Set, error) {
	set := &Set{categories: make(map[string]Category, len(categories))}
	for name, category := range categories {
		if name == "" {
			return nil, errs.Wrap(errs.ErrValidation, "rules", "new", "category with empty name", nil)
		}
		copied := make(Category, len(category))
		for tag, groups := range category {
			if tag == "" {
				return nil, errs.Wrap(errs.ErrValidation, "rules", "new",
					fmt.Sprintf("category %q declares a rule with an empty tag keyword", name), nil)
			}
			copied[tag] = append(TagRule(nil), groups...)
		}
		set.categories[name] = copied
	}
	return set, nil
}

// Load reads a rule set from a TOML file.
//
// Layout, one table per category:
//
//	[t2_star]
//	SeriesDescription = [["T2"], ["STAR"]]
//	Modality = [["MR"]]
func Load(path string) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrNotFound, "rules", "load", fmt.Sprintf("open rule file %s", path), err)
	}
	defer file.Close()

	raw := map[string]map[string][][]string{}
	if err := toml.NewDecoder(file).Decode(&raw); err != nil {
		return nil, errs.Wrap(errs.ErrValidation, "rules", "load", fmt.Sprintf("parse rule file %s", path), err)
	}

	categories := make(map[string]Category, len(raw))
	for name, tags := range raw {
		category := make(Category, len(tags))
		for tag, groups := range tags {
			rule := make(TagRule, 0, len(groups))
			for _, group := range groups {
				rule = append(rule, Group(group))
			}
			category[tag] = rule
		}
		categories[name] = category
	}
	return New(categories)
}

// Categories returns the configured category names in sorted order.
func (s *Set) Categories() []string {
	names := make([]string, 0, len(s.categories))
	for name := range s.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Category returns the constraints for one category.
func (s *Set) Category(name string) (Category, bool) {
	category, ok := s.categories[name]
	return category, ok
}

// Len returns the number of configured categories.
func (s *Set) Len() int {
	return len(s.categories)
}

// GroupCount returns the total number of value groups declared for a category.
// A category with zero groups can never match.
func (s *Set) GroupCount(name string) int {
	total := 0
	for _, rule := range s.categories[name] {
		total += len(rule)
	}
	return total
}

// CreateSample writes a sample rule file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create rules directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleRules), 0o644); err != nil {
		return fmt.Errorf("write sample rules: %w", err)
	}
	return nil
}
