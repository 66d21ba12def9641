package bundle

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"cohort/internal/classify"
	"cohort/internal/logging"
	"cohort/internal/testsupport"
)

func seedIndex(t *testing.T, sourceDir string) *classify.Index {
	t.Helper()
	tags := map[string]string{"PatientName": "Doe^John", "SeriesDescription": "t2 star"}
	seriesDir := filepath.Join(sourceDir, "doe_john", "series1")
	testsupport.WriteSeries(t, seriesDir, 3, tags)

	ix := classify.NewIndex()
	ix.Put("Doe^John", "t2_star", filepath.Join(seriesDir, "IM-0001"))
	return ix
}

func TestBundlerWritesArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ix := seedIndex(t, cfg.Paths.SourceDir)

	b := New(cfg, logging.NewNop())
	summary, err := b.Run(context.Background(), ix)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Written != 1 || summary.Skipped != 0 {
		t.Fatalf("expected 1 written, 0 skipped, got %d/%d", summary.Written, summary.Skipped)
	}
	if summary.RunID == "" {
		t.Fatal("expected non-empty run id")
	}

	archive := filepath.Join(cfg.Paths.OutputDir, "doe_john", "doe_john_t2_star.tar.gz")
	names := readArchiveNames(t, archive)
	if len(names) != 3 {
		t.Fatalf("expected 3 entries, got %v", names)
	}
	for _, name := range names {
		if filepath.IsAbs(name) {
			t.Fatalf("archive entry has absolute path: %s", name)
		}
	}
}

func TestBundlerSkipsExistingArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ix := seedIndex(t, cfg.Paths.SourceDir)

	archive := filepath.Join(cfg.Paths.OutputDir, "doe_john", "doe_john_t2_star.tar.gz")
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archive, []byte("sentinel"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := New(cfg, logging.NewNop())
	summary, err := b.Run(context.Background(), ix)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || summary.Written != 0 {
		t.Fatalf("expected archive to be skipped, got written=%d skipped=%d", summary.Written, summary.Skipped)
	}
	data, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "sentinel" {
		t.Fatal("existing archive was overwritten")
	}
}

func TestBundlerOverwritesWhenConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Bundle.OverwriteExisting = true
	ix := seedIndex(t, cfg.Paths.SourceDir)

	archive := filepath.Join(cfg.Paths.OutputDir, "doe_john", "doe_john_t2_star.tar.gz")
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archive, []byte("sentinel"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := New(cfg, logging.NewNop())
	summary, err := b.Run(context.Background(), ix)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Written != 1 {
		t.Fatalf("expected overwrite, got written=%d skipped=%d", summary.Written, summary.Skipped)
	}
	if names := readArchiveNames(t, archive); len(names) != 3 {
		t.Fatalf("expected 3 entries after overwrite, got %v", names)
	}
}

func TestBundlerWritesManifest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Bundle.WriteManifest = true
	ix := seedIndex(t, cfg.Paths.SourceDir)

	b := New(cfg, logging.NewNop())
	summary, err := b.Run(context.Background(), ix)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	manifestPath := filepath.Join(cfg.Paths.OutputDir, "manifest-"+summary.RunID+".json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var decoded Summary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("manifest not valid JSON: %v", err)
	}
	if decoded.RunID != summary.RunID {
		t.Fatalf("manifest run id %q != %q", decoded.RunID, summary.RunID)
	}
	if len(decoded.Artifacts) != 1 || decoded.Artifacts[0].Files != 3 {
		t.Fatalf("unexpected manifest artifacts: %+v", decoded.Artifacts)
	}
}

func TestBundlerEmptyIndex(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var b Sink = New(cfg, logging.NewNop())

	summary, err := b.Run(context.Background(), classify.NewIndex())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Written != 0 || len(summary.Artifacts) != 0 {
		t.Fatalf("expected no artifacts, got %+v", summary)
	}
}

func TestBundlerRefusesLockedDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ix := seedIndex(t, cfg.Paths.SourceDir)

	holder := New(cfg, logging.NewNop())
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	ok, err := holder.lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("could not pre-acquire lock: ok=%v err=%v", ok, err)
	}
	defer holder.lock.Unlock()

	b := New(cfg, logging.NewNop())
	if _, err := b.Run(context.Background(), ix); err == nil {
		t.Fatal("expected error when destination is locked")
	}
}

func readArchiveNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar: %v", err)
		}
		names = append(names, hdr.Name)
	}
	return names
}
