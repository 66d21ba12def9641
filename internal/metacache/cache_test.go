package metacache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cohort/internal/dicomtag"
	"cohort/internal/logging"
	"cohort/internal/testsupport"
)

func openCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "cache", "metadata.db"), logging.NewNop())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestStoreAndLookup(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	tags := map[string]string{"PatientName": "case_001", "Modality": "MR"}
	if err := cache.Store(ctx, "/data/a", 100, 12345, tags); err != nil {
		t.Fatal(err)
	}

	got, hit, err := cache.Lookup(ctx, "/data/a", 100, 12345)
	if err != nil || !hit {
		t.Fatalf("expected hit: hit=%v err=%v", hit, err)
	}
	if got["PatientName"] != "case_001" {
		t.Fatalf("tags = %v", got)
	}

	// A changed mtime must miss.
	if _, hit, err = cache.Lookup(ctx, "/data/a", 100, 99999); err != nil || hit {
		t.Fatalf("stale entry served: hit=%v err=%v", hit, err)
	}
}

func TestStoreOverwrites(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	if err := cache.Store(ctx, "/data/a", 1, 1, map[string]string{"Modality": "MR"}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Store(ctx, "/data/a", 2, 2, map[string]string{"Modality": "CT"}); err != nil {
		t.Fatal(err)
	}
	got, hit, err := cache.Lookup(ctx, "/data/a", 2, 2)
	if err != nil || !hit {
		t.Fatalf("hit=%v err=%v", hit, err)
	}
	if got["Modality"] != "CT" {
		t.Fatalf("tags = %v", got)
	}
}

func TestPruneRemovesMissingFiles(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	dir := t.TempDir()
	existing := filepath.Join(dir, "present")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := cache.Store(ctx, existing, 1, 1, map[string]string{}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Store(ctx, filepath.Join(dir, "gone"), 1, 1, map[string]string{}); err != nil {
		t.Fatal(err)
	}

	removed, err := cache.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}

func TestCachingReaderAvoidsReparse(t *testing.T) {
	cache := openCache(t)

	path := filepath.Join(t.TempDir(), "IM-0001")
	testsupport.WriteDicom(t, path, map[string]string{"PatientName": "case_001", "Modality": "MR"})

	counter := &countingReader{inner: dicomtag.NewReader()}
	reader := NewReader(counter, cache, logging.NewNop())

	for i := 0; i < 3; i++ {
		meta, err := reader.Read(path)
		if err != nil {
			t.Fatal(err)
		}
		if got, _ := meta.Get("PatientName"); got != "case_001" {
			t.Fatalf("PatientName = %q", got)
		}
	}
	if counter.reads != 1 {
		t.Fatalf("expected one parse, got %d", counter.reads)
	}
}

type countingReader struct {
	inner dicomtag.Reader
	reads int
}

func (r *countingReader) Read(path string) (dicomtag.Metadata, error) {
	r.reads++
	return r.inner.Read(path)
}
