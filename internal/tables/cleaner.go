package tables

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cohort/internal/errs"
	"cohort/internal/logging"
)

// missingSpellings are the literal cell values that mean "no measurement".
// The trailing-space variants show up in hand-edited exports.
var missingSpellings = map[string]struct{}{
	"nan":  {},
	"nan ": {},
	"NaN":  {},
	"NaN ": {},
}

// radialPeakColumn additionally uses "--" as its missing marker.
const radialPeakColumn = "peak_strain_rad_%"

// CleanStats summarizes a cleaning run.
type CleanStats struct {
	Subjects      int
	TablesCleaned int
	TablesDropped int
	RowsDropped   int
}

// Cleaner normalizes missing values in per-subject tables and drops rows
// that still contain one. Tables left without data rows are not written.
type Cleaner struct {
	src    string
	dst    string
	dims   []string
	logger *slog.Logger
}

// NewCleaner reads subject directories under src and writes cleaned copies
// beneath dst, preserving the subject/dim/table layout.
func NewCleaner(src, dst string, dims []string, logger *slog.Logger) *Cleaner {
	if len(dims) == 0 {
		dims = []string{"2d"}
	}
	return &Cleaner{
		src:    src,
		dst:    dst,
		dims:   dims,
		logger: logging.NewComponentLogger(logger, "tables"),
	}
}

// Run cleans every table of every subject.
func (c *Cleaner) Run(ctx context.Context) (CleanStats, error) {
	var stats CleanStats

	subjects, err := listDirs(c.src)
	if err != nil {
		return stats, errs.Wrap(errs.ErrIO, "tables", "list subjects", "Failed to list subject directories", err)
	}
	for _, subject := range subjects {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Subjects++
		c.logger.Info("cleaning subject", logging.String("subject", subject))
		for _, dim := range c.dims {
			dimDir := filepath.Join(c.src, subject, dim)
			names, err := listFiles(dimDir, ".xlsx")
			if err != nil {
				return stats, errs.Wrap(errs.ErrIO, "tables", "list tables", fmt.Sprintf("Failed to list tables for subject %s", subject), err)
			}
			for _, name := range names {
				rows, err := readSheet(filepath.Join(dimDir, name))
				if err != nil {
					return stats, errs.Wrap(errs.ErrIO, "tables", "read table", fmt.Sprintf("Failed to read %s", name), err)
				}
				cleaned, dropped := cleanRows(rows)
				stats.RowsDropped += dropped
				if len(cleaned) < 2 {
					stats.TablesDropped++
					c.logger.Debug("table empty after cleaning, dropped",
						logging.String("subject", subject),
						logging.String("table", name))
					continue
				}
				out := filepath.Join(c.dst, subject, dim, name)
				if err := writeSheet(out, cleaned); err != nil {
					return stats, errs.Wrap(errs.ErrIO, "tables", "write table", fmt.Sprintf("Failed to write %s", name), err)
				}
				stats.TablesCleaned++
			}
		}
	}

	c.logger.Info("cleaning completed",
		logging.Int("subjects", stats.Subjects),
		logging.Int("tables", stats.TablesCleaned),
		logging.Int("dropped_tables", stats.TablesDropped),
		logging.Int("dropped_rows", stats.RowsDropped))
	return stats, nil
}

// cleanRows normalizes missing-value spellings and removes any data row
// that still has an empty cell. The header row is kept as-is.
func cleanRows(rows [][]string) (kept [][]string, dropped int) {
	if len(rows) == 0 {
		return nil, 0
	}
	header := rows[0]
	radialCol := -1
	for i, name := range header {
		if strings.TrimSpace(name) == radialPeakColumn {
			radialCol = i
		}
	}

	kept = append(kept, header)
	for _, row := range rows[1:] {
		row = padRow(row, len(header))
		complete := true
		for i, cell := range row {
			if _, missing := missingSpellings[cell]; missing {
				cell = ""
			}
			if i == radialCol && strings.TrimSpace(cell) == "--" {
				cell = ""
			}
			row[i] = cell
			if strings.TrimSpace(cell) == "" {
				complete = false
			}
		}
		if !complete {
			dropped++
			continue
		}
		kept = append(kept, row)
	}
	return kept, dropped
}

func listDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func listFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), suffix) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
