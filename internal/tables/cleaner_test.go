package tables

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cohort/internal/logging"
)

func writeTestSheet(t *testing.T, path string, rows [][]string) {
	t.Helper()
	if err := writeSheet(path, rows); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}

func TestCleanerNormalizesAndDrops(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeTestSheet(t, filepath.Join(src, "subject1", "2d", "table.xlsx"), [][]string{
		{"slice", "peak_strain_rad_%", "value"},
		{"1", "12.5", "3.1"},
		{"2", "nan ", "4.0"},
		{"3", "--", "5.0"},
		{"4", "9.9", "NaN"},
	})

	c := NewCleaner(src, dst, []string{"2d"}, logging.NewNop())
	stats, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Subjects != 1 || stats.TablesCleaned != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.RowsDropped != 3 {
		t.Fatalf("expected 3 dropped rows, got %d", stats.RowsDropped)
	}

	rows, err := readSheet(filepath.Join(dst, "subject1", "2d", "table.xlsx"))
	if err != nil {
		t.Fatalf("read cleaned table: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[1][0] != "1" || rows[1][1] != "12.5" {
		t.Fatalf("wrong surviving row: %v", rows[1])
	}
}

func TestCleanerDropsEmptyTables(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeTestSheet(t, filepath.Join(src, "subject1", "2d", "bad.xlsx"), [][]string{
		{"slice", "value"},
		{"1", "nan"},
		{"2", "NaN"},
	})

	c := NewCleaner(src, dst, []string{"2d"}, logging.NewNop())
	stats, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.TablesDropped != 1 || stats.TablesCleaned != 0 {
		t.Fatalf("expected table to be dropped, got %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(dst, "subject1", "2d", "bad.xlsx")); !os.IsNotExist(err) {
		t.Fatal("empty table should not be written")
	}
}

func TestCleanerIgnoresMissingDimDir(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "subject1"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := NewCleaner(src, t.TempDir(), []string{"2d"}, logging.NewNop())
	stats, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Subjects != 1 || stats.TablesCleaned != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCleanRowsShortRowCountsAsMissing(t *testing.T) {
	kept, dropped := cleanRows([][]string{
		{"a", "b", "c"},
		{"1", "2"},
		{"1", "2", "3"},
	})
	if dropped != 1 {
		t.Fatalf("expected the short row dropped, got %d", dropped)
	}
	if len(kept) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(kept))
	}
}

func TestCleanRowsRadialMarkerOnlyInRadialColumn(t *testing.T) {
	kept, dropped := cleanRows([][]string{
		{"label", "value"},
		{"--", "3.0"},
	})
	// "--" outside peak_strain_rad_% is a legitimate label, not a missing value.
	if dropped != 0 || len(kept) != 2 {
		t.Fatalf("row should survive: kept=%d dropped=%d", len(kept), dropped)
	}
}
