package tables

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"cohort/internal/config"
	"cohort/internal/errs"
	"cohort/internal/logging"
)

// roiGroups is the fixed reporting order for region-of-interest tables.
var roiGroups = []string{"global", "endo", "epi"}

// Merger reduces cleaned per-subject tables to peak values and assembles
// one row per subject, joined with study metadata, into a single workbook.
type Merger struct {
	cfg    config.Tables
	src    string
	dst    string
	logger *slog.Logger
}

// NewMerger reads cleaned tables from the subject directories under src and
// writes <experiment>.xlsx into dst.
func NewMerger(cfg config.Tables, src, dst string, logger *slog.Logger) *Merger {
	return &Merger{
		cfg:    cfg,
		src:    src,
		dst:    dst,
		logger: logging.NewComponentLogger(logger, "tables"),
	}
}

type namedValue struct {
	column string
	value  float64
}

// Run merges all subjects and returns the output workbook path.
func (m *Merger) Run(ctx context.Context) (string, error) {
	relevant := m.identifyTables()
	if len(relevant) == 0 {
		return "", errs.Wrap(errs.ErrConfiguration, "tables", "identify tables", "No table names result from the configured segments/dims/axes/orientations/metrics", nil)
	}

	subjects, err := listDirs(m.src)
	if err != nil {
		return "", errs.Wrap(errs.ErrIO, "tables", "list subjects", "Failed to list subject directories", err)
	}

	var columns []string
	seen := make(map[string]struct{})
	bySubject := make(map[string]map[string]float64, len(subjects))

	for _, subject := range subjects {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		values, err := m.collectSubject(subject, relevant)
		if err != nil {
			return "", err
		}
		row := make(map[string]float64, len(values))
		for _, v := range values {
			row[v.column] = v.value
			if _, ok := seen[v.column]; !ok {
				seen[v.column] = struct{}{}
				columns = append(columns, v.column)
			}
		}
		bySubject[subject] = row
		m.logger.Debug("subject merged",
			logging.String("subject", subject),
			logging.Int("values", len(values)))
	}

	meta, metaCols, err := m.loadMetadata()
	if err != nil {
		return "", err
	}

	header := append([]string{"subject"}, columns...)
	header = append(header, metaCols...)
	out := [][]string{header}
	for _, subject := range subjects {
		row := []string{subject}
		for _, col := range columns {
			if v, ok := bySubject[subject][col]; ok {
				row = append(row, formatValue(v))
			} else {
				row = append(row, "")
			}
		}
		mdata := meta[normalizeSubject(subject)]
		for i := range metaCols {
			if i < len(mdata) {
				row = append(row, mdata[i])
			} else {
				row = append(row, "")
			}
		}
		out = append(out, row)
	}

	path := filepath.Join(m.dst, m.cfg.Experiment+".xlsx")
	if err := writeSheet(path, out); err != nil {
		return "", errs.Wrap(errs.ErrIO, "tables", "write workbook", "Failed to write merged workbook", err)
	}
	m.logger.Info("merge completed",
		logging.Int("subjects", len(subjects)),
		logging.Int("columns", len(columns)),
		logging.String(logging.FieldPath, path))
	return path, nil
}

// identifyTables enumerates segment_dim_axis_orientation_metric names,
// skipping combinations the acquisition geometry cannot produce.
func (m *Merger) identifyTables() []string {
	var relevant []string
	for _, segment := range m.cfg.Segments {
		for _, dim := range m.cfg.Dims {
			for _, axis := range m.cfg.Axes {
				for _, orientation := range m.cfg.Orientations {
					if impossibleCombo(axis, orientation) {
						continue
					}
					for _, metric := range m.cfg.Metrics {
						relevant = append(relevant, fmt.Sprintf("%s_%s_%s_%s_%s", segment, dim, axis, orientation, metric))
					}
				}
			}
		}
	}
	return relevant
}

func impossibleCombo(axis, orientation string) bool {
	switch {
	case axis == "short_axis" && orientation == "longit":
		return true
	case axis == "long_axis" && orientation == "circumf":
		return true
	case axis == "long_axis" && orientation == "radial":
		return true
	}
	return false
}

// collectSubject walks one subject's directory and extracts peak values for
// every relevant table found.
func (m *Merger) collectSubject(subject string, relevant []string) ([]namedValue, error) {
	var values []namedValue
	root := filepath.Join(m.src, subject)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".xlsx") {
			return nil
		}
		name := matchTableName(d.Name(), relevant)
		if name == "" {
			return nil
		}
		rows, err := readSheet(path)
		if err != nil {
			return err
		}
		extracted, err := extractPeaks(name, rows)
		if err != nil {
			return fmt.Errorf("%s: %w", d.Name(), err)
		}
		values = append(values, extracted...)
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrIO, "tables", "collect subject",
			fmt.Sprintf("Failed to read tables for subject %s", subject), err)
	}
	return values, nil
}

// matchTableName returns the relevant table name embedded in a file name,
// or "" when the file is not one of the requested tables. Export names
// carry a parenthesized unit suffix after the table name.
func matchTableName(fileName string, relevant []string) string {
	for _, name := range relevant {
		if strings.Contains(fileName, name+"_(") {
			return name
		}
	}
	return ""
}

// extractPeaks reduces a table to per-group peak values. Circumferential and
// longitudinal strain peaks at the minimum value, everything else at the
// maximum. ROI tables are grouped by global/endo/epi; AHA tables yield a
// single mean over segments.
func extractPeaks(name string, rows [][]string) ([]namedValue, error) {
	rows = dropTimeColumns(rows)
	if len(rows) < 2 {
		return nil, nil
	}
	header := rows[0]
	// Long-axis exports label the slice column differently.
	for i, col := range header {
		if strings.TrimSpace(col) == "series, slice" {
			header[i] = "slice"
		}
	}

	infoCols := 2
	if strings.Contains(name, "aha") {
		infoCols = 1
	}
	if len(header) <= infoCols {
		return nil, fmt.Errorf("table has no sample columns")
	}

	useMin := strings.Contains(name, "strain") &&
		(strings.Contains(name, "circumf") || strings.Contains(name, "longit"))

	data := rows[1:]
	if strings.Contains(name, "roi") {
		data = filterROIRows(header, data)
	}

	if strings.Contains(name, "roi") {
		sums := make(map[string]float64)
		counts := make(map[string]int)
		for _, row := range data {
			row = padRow(row, len(header))
			peak, ok := rowPeak(row[infoCols:], useMin)
			if !ok {
				continue
			}
			group := roiGroup(row[0])
			if group == "" {
				continue
			}
			sums[group] += peak
			counts[group]++
		}
		var values []namedValue
		for _, group := range roiGroups {
			if counts[group] == 0 {
				continue
			}
			values = append(values, namedValue{
				column: fmt.Sprintf("peak_%s_%s", group, name),
				value:  sums[group] / float64(counts[group]),
			})
		}
		return values, nil
	}

	var sum float64
	var count int
	for _, row := range data {
		row = padRow(row, len(header))
		peak, ok := rowPeak(row[infoCols:], useMin)
		if !ok {
			continue
		}
		sum += peak
		count++
	}
	if count == 0 {
		return nil, nil
	}
	return []namedValue{{column: "peak_mean_" + name, value: sum / float64(count)}}, nil
}

// filterROIRows drops slice-wise global rows and keeps only the ROI labels
// that map to the global/endo/epi reporting groups.
func filterROIRows(header []string, data [][]string) [][]string {
	sliceCol := -1
	for i, col := range header {
		if strings.TrimSpace(col) == "slice" {
			sliceCol = i
		}
	}
	var kept [][]string
	for _, row := range data {
		if len(row) == 0 {
			continue
		}
		roi := strings.TrimSpace(row[0])
		if roi == "global" && sliceCol >= 0 && sliceCol < len(row) &&
			strings.TrimSpace(row[sliceCol]) != "all slices" {
			continue
		}
		if roiGroup(roi) == "" {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func roiGroup(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, group := range roiGroups {
		if strings.Contains(label, group) {
			return group
		}
	}
	return ""
}

// rowPeak finds the extreme value among the sample cells of one row.
// Non-numeric cells are skipped.
func rowPeak(cells []string, useMin bool) (float64, bool) {
	var peak float64
	found := false
	for _, cell := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			continue
		}
		if !found || (useMin && v < peak) || (!useMin && v > peak) {
			peak = v
			found = true
		}
	}
	return peak, found
}

// dropTimeColumns removes every column whose header mentions time. The
// merged workbook reports peaks, not time series.
func dropTimeColumns(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	header := rows[0]
	keep := make([]int, 0, len(header))
	for i, col := range header {
		if strings.Contains(strings.ToLower(col), "time") {
			continue
		}
		keep = append(keep, i)
	}
	if len(keep) == len(header) {
		return rows
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		row = padRow(row, len(header))
		trimmed := make([]string, 0, len(keep))
		for _, i := range keep {
			trimmed = append(trimmed, row[i])
		}
		out = append(out, trimmed)
	}
	return out
}

// loadMetadata reads the metadata workbook and indexes the requested columns
// by subject ID. Rows without a redcap_id are dropped.
func (m *Merger) loadMetadata() (map[string][]string, []string, error) {
	if strings.TrimSpace(m.cfg.MetadataSrc) == "" || len(m.cfg.MetadataCols) == 0 {
		return nil, nil, nil
	}
	rows, err := readSheet(m.cfg.MetadataSrc)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrIO, "tables", "read metadata", "Failed to read metadata workbook", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}
	idCol, ok := colIndex["redcap_id"]
	if !ok {
		return nil, nil, errs.Wrap(errs.ErrConfiguration, "tables", "read metadata", "Metadata workbook has no redcap_id column", nil)
	}
	wanted := make([]int, 0, len(m.cfg.MetadataCols))
	for _, col := range m.cfg.MetadataCols {
		i, ok := colIndex[col]
		if !ok {
			return nil, nil, errs.Wrap(errs.ErrConfiguration, "tables", "read metadata",
				fmt.Sprintf("Metadata workbook has no %q column", col), nil)
		}
		wanted = append(wanted, i)
	}

	meta := make(map[string][]string)
	for _, row := range rows[1:] {
		row = padRow(row, len(header))
		id := normalizeSubject(row[idCol])
		if id == "" {
			continue
		}
		values := make([]string, 0, len(wanted))
		for _, i := range wanted {
			values = append(values, row[i])
		}
		meta[id] = values
	}
	return meta, append([]string(nil), m.cfg.MetadataCols...), nil
}

// normalizeSubject canonicalizes subject IDs for the metadata join. Numeric
// IDs round-trip through spreadsheets as floats, so "42.0" and "42" must
// compare equal.
func normalizeSubject(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if v, err := strconv.ParseFloat(id, 64); err == nil {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return id
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
