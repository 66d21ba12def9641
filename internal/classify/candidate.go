package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cohort/internal/config"
	"cohort/internal/errs"
)

// Constraints decides whether a filesystem entry is worth a metadata read.
// The zero value accepts every regular file.
type Constraints struct {
	// MinSeriesFiles rejects files whose directory holds fewer entries.
	// Sparse directories usually hold scouts or aborted series, not a
	// complete acquisition.
	MinSeriesFiles int
	// FileSuffixes lists accepted name suffixes. Empty accepts all names.
	FileSuffixes []string
	// ExcludePathParts rejects any path containing one of these substrings.
	ExcludePathParts []string
}

// ConstraintsFromConfig copies the scan constraints out of the configuration.
func ConstraintsFromConfig(cfg *config.Config) Constraints {
	return Constraints{
		MinSeriesFiles:   cfg.Scan.MinSeriesFiles,
		FileSuffixes:     append([]string(nil), cfg.Scan.FileSuffixes...),
		ExcludePathParts: append([]string(nil), cfg.Scan.ExcludePathParts...),
	}
}

// Accept reports whether path is a classification candidate. Every check must
// pass. The function only reads filesystem state; it never modifies it.
func (c Constraints) Accept(path string) (bool, error) {
	// Stat follows symlinks, so a link to a regular series file qualifies.
	info, err := os.Stat(path)
	if err != nil {
		return false, errs.Wrap(errs.ErrIO, "candidate", "accept", fmt.Sprintf("stat %s", path), err)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	if !c.suffixAccepted(info.Name()) {
		return false, nil
	}

	for _, part := range c.ExcludePathParts {
		if part != "" && strings.Contains(path, part) {
			return false, nil
		}
	}

	if c.MinSeriesFiles > 0 {
		siblings, err := countEntries(path)
		if err != nil {
			return false, err
		}
		if siblings < c.MinSeriesFiles {
			return false, nil
		}
	}

	return true, nil
}

func (c Constraints) suffixAccepted(name string) bool {
	if len(c.FileSuffixes) == 0 {
		return true
	}
	for _, suffix := range c.FileSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func countEntries(path string) (int, error) {
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, errs.Wrap(errs.ErrIO, "candidate", "accept", fmt.Sprintf("list %s", dir), err)
	}
	return len(entries), nil
}
