package rules

import (
	"fmt"
	"strings"

	"cohort/internal/errs"
)

// MissingTagError reports a required metadata tag that was absent from an
// inspected file. It is classified as a configuration error: either the rule
// set or the source data is structurally wrong, so the run must stop instead
// of silently skipping the file.
type MissingTagError struct {
	Category string
	Tag      string
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("category %q requires tag %q which is absent from the file metadata", e.Category, e.Tag)
}

func (e *MissingTagError) Unwrap() error { return errs.ErrConfiguration }

// Matches evaluates one category against a file's metadata.
//
// Every group declared for every tag of the category may score at most one
// hit; the category matches only when the hit count equals the declared group
// count and that count is nonzero. Categories without groups never match.
func (s *Set) Matches(category string, meta map[string]string) (bool, error) {
	constraints, ok := s.categories[category]
	if !ok {
		return false, errs.Wrap(errs.ErrValidation, "matcher", "matches",
			fmt.Sprintf("unknown category %q", category), nil)
	}

	hits := 0
	declared := 0
	for tag, rule := range constraints {
		value, present := meta[tag]
		if !present || value == "" {
			return false, &MissingTagError{Category: category, Tag: tag}
		}
		declared += len(rule)
		for _, group := range rule {
			if groupSatisfied(group, value) {
				hits++
			}
		}
	}
	return hits == declared && hits != 0, nil
}

func groupSatisfied(group Group, value string) bool {
	for _, token := range group {
		if token != "" && strings.Contains(value, token) {
			return true
		}
	}
	return false
}
