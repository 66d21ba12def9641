package rules

import (
	"errors"
	"testing"

	"cohort/internal/errs"
)

func mustSet(t *testing.T, categories map[string]Category) *Set {
	t.Helper()
	set, err := New(categories)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestMatchesRequiresEveryGroup(t *testing.T) {
	set := mustSet(t, map[string]Category{
		"seriesA": {
			"Description": TagRule{Group{"FOO"}},
			"Kind":        TagRule{Group{"X"}},
		},
	})

	ok, err := set.Matches("seriesA", map[string]string{"Description": "FOO-scan", "Kind": "X-ray"})
	if err != nil || !ok {
		t.Fatalf("expected full match, got ok=%v err=%v", ok, err)
	}

	ok, err = set.Matches("seriesA", map[string]string{"Description": "FOO-scan", "Kind": "Y"})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("one of two groups hit must not match")
	}
}

func TestMatchesGroupAlternatives(t *testing.T) {
	set := mustSet(t, map[string]Category{
		"t2_star": {
			"SeriesDescription": TagRule{Group{"T2"}, Group{"STAR", "Star"}},
			"Modality":          TagRule{Group{"MR"}},
		},
	})

	meta := map[string]string{"SeriesDescription": "T2 Star map", "Modality": "MR"}
	ok, err := set.Matches("t2_star", meta)
	if err != nil || !ok {
		t.Fatalf("alternative spelling should satisfy group: ok=%v err=%v", ok, err)
	}

	meta["SeriesDescription"] = "t2 star map" // matching is case-sensitive
	ok, err = set.Matches("t2_star", meta)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("lowercased value must not match uppercase tokens")
	}
}

func TestMatchesMissingTagIsConfigurationError(t *testing.T) {
	set := mustSet(t, map[string]Category{
		"seriesA": {
			"Description": TagRule{Group{"FOO"}},
			"Kind":        TagRule{Group{"X"}},
		},
	})

	_, err := set.Matches("seriesA", map[string]string{"Description": "FOO"})
	if err == nil {
		t.Fatal("expected configuration error for absent tag")
	}
	var missing *MissingTagError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingTagError, got %v", err)
	}
	if missing.Tag != "Kind" || missing.Category != "seriesA" {
		t.Fatalf("unexpected error detail: %+v", missing)
	}
	if !errs.IsFatal(err) {
		t.Fatal("missing tag must classify as fatal configuration error")
	}

	// Empty values count as absent, mirroring exports that blank out tags.
	_, err = set.Matches("seriesA", map[string]string{"Description": "FOO", "Kind": ""})
	if !errors.As(err, &missing) {
		t.Fatalf("empty value should be treated as missing, got %v", err)
	}
}

func TestMatchesZeroGroupCategoryNeverMatches(t *testing.T) {
	set := mustSet(t, map[string]Category{"empty": {}})
	ok, err := set.Matches("empty", map[string]string{"Anything": "value"})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("zero declared groups must never match")
	}
}

func TestMatchesUnknownCategory(t *testing.T) {
	set := mustSet(t, map[string]Category{})
	_, err := set.Matches("ghost", nil)
	if err == nil || !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
