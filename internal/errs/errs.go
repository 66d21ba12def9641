// Package errs defines the error taxonomy shared across the classification
// pipeline. Sentinel markers classify failures for the CLI: configuration
// errors abort a run outright, while validation and not-found conditions are
// reportable without discarding the partial index.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks structural mismatches between the rule set and the
	// inspected data, such as a required metadata tag missing from a file.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks invalid inputs or arguments.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks missing files or directories.
	ErrNotFound = errors.New("not found")
	// ErrIO marks filesystem failures while walking or reading files.
	ErrIO = errors.New("io error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the whole classification run
// rather than being reported and skipped.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
