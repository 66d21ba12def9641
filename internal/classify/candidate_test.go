package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAcceptSuffixFilter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.dcm", "b.txt")

	c := Constraints{FileSuffixes: []string{".dcm"}}
	if ok, err := c.Accept(filepath.Join(dir, "a.dcm")); err != nil || !ok {
		t.Fatalf("dcm: ok=%v err=%v", ok, err)
	}
	if ok, err := c.Accept(filepath.Join(dir, "b.txt")); err != nil || ok {
		t.Fatalf("txt should be rejected: ok=%v err=%v", ok, err)
	}

	// Empty suffix set accepts every file name.
	open := Constraints{}
	if ok, err := open.Accept(filepath.Join(dir, "b.txt")); err != nil || !ok {
		t.Fatalf("open constraints: ok=%v err=%v", ok, err)
	}
}

func TestAcceptExcludedPathParts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "study")
	writeFiles(t, dir, "DICOMDIR", "IM-0001")

	c := Constraints{ExcludePathParts: []string{"DICOMDIR"}}
	if ok, err := c.Accept(filepath.Join(dir, "DICOMDIR")); err != nil || ok {
		t.Fatalf("excluded path accepted: ok=%v err=%v", ok, err)
	}
	if ok, err := c.Accept(filepath.Join(dir, "IM-0001")); err != nil || !ok {
		t.Fatalf("sibling rejected: ok=%v err=%v", ok, err)
	}
}

func TestAcceptMinSeriesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "IM-0001", "IM-0002", "IM-0003")

	c := Constraints{MinSeriesFiles: 4}
	if ok, err := c.Accept(filepath.Join(dir, "IM-0001")); err != nil || ok {
		t.Fatalf("sparse series accepted: ok=%v err=%v", ok, err)
	}

	c.MinSeriesFiles = 3
	if ok, err := c.Accept(filepath.Join(dir, "IM-0001")); err != nil || !ok {
		t.Fatalf("full series rejected: ok=%v err=%v", ok, err)
	}
}

func TestAcceptFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "IM-0001")
	link := filepath.Join(dir, "IM-0001-link")
	if err := os.Symlink(filepath.Join(dir, "IM-0001"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if ok, err := (Constraints{}).Accept(link); err != nil || !ok {
		t.Fatalf("symlink to regular file rejected: ok=%v err=%v", ok, err)
	}

	// A dangling link still fails with an IO error, like a missing file.
	dangling := filepath.Join(dir, "gone-link")
	if err := os.Symlink(filepath.Join(dir, "gone"), dangling); err != nil {
		t.Fatal(err)
	}
	if _, err := (Constraints{}).Accept(dangling); err == nil {
		t.Fatal("expected IO error for dangling symlink")
	}
}

func TestAcceptRejectsNonRegular(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if ok, err := (Constraints{}).Accept(sub); err != nil || ok {
		t.Fatalf("directory accepted as candidate: ok=%v err=%v", ok, err)
	}
}

func TestAcceptMissingFileErrors(t *testing.T) {
	if _, err := (Constraints{}).Accept(filepath.Join(t.TempDir(), "ghost")); err == nil {
		t.Fatal("expected IO error for missing file")
	}
}
