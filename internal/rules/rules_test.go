package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesNestedGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `
[t2_star]
SeriesDescription = [["T2"], ["STAR"]]
Modality = [["MR"]]

[t2_spair]
SeriesDescription = [["T2"], ["SPAIR"]]
Modality = [["MR"]]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := set.Categories(); len(got) != 2 || got[0] != "t2_spair" || got[1] != "t2_star" {
		t.Fatalf("categories = %v", got)
	}
	if got := set.GroupCount("t2_star"); got != 3 {
		t.Fatalf("t2_star group count = %d, want 3", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing rule file")
	}
}

func TestCreateSampleLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rules.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}
	set, err := Load(path)
	if err != nil {
		t.Fatalf("sample rules failed to load: %v", err)
	}
	if set.Len() == 0 {
		t.Fatal("sample rules empty")
	}

	ok, err := set.Matches("t2_star", map[string]string{
		"SeriesDescription": "T2 STAR images",
		"Modality":          "MR",
	})
	if err != nil || !ok {
		t.Fatalf("sample t2_star rule should match: ok=%v err=%v", ok, err)
	}
}
