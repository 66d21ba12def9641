package errs_test

import (
	"errors"
	"strings"
	"testing"

	"cohort/internal/errs"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := errs.Wrap(errs.ErrIO, "classifier", "read metadata", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errs.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"classifier", "read metadata", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestIsFatal(t *testing.T) {
	cfgErr := errs.Wrap(errs.ErrConfiguration, "matcher", "check tags", "tag missing", nil)
	if !errs.IsFatal(cfgErr) {
		t.Fatalf("expected configuration error to be fatal: %v", cfgErr)
	}
	ioErr := errs.Wrap(errs.ErrIO, "walker", "walk", "denied", errors.New("permission"))
	if errs.IsFatal(ioErr) {
		t.Fatalf("io error should not be fatal-classified: %v", ioErr)
	}
	if errs.IsFatal(nil) {
		t.Fatal("nil must not be fatal")
	}
}

func TestWrapNilMarkerDefaultsToIO(t *testing.T) {
	err := errs.Wrap(nil, "", "", "", errors.New("x"))
	if !errors.Is(err, errs.ErrIO) {
		t.Fatalf("expected io marker fallback, got %v", err)
	}
	if !strings.Contains(err.Error(), "pipeline failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}
