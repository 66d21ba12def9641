package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cohort/internal/classify"
	"cohort/internal/config"
	"cohort/internal/dicomtag"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var tagFilter []string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show extracted tags for one file, or survey one candidate per series directory",
		Long: `Without arguments, inspect walks the source tree and prints the requested
tags for the first candidate file of every series directory. With a file
argument it prints that file's tags and the categories it matches.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requested, err := normalizeTagFilter(tagFilter)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				path, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				return runInspectFile(ctx, cmd, path, requested, jsonOutput)
			}
			return runInspectSurvey(ctx, cmd, requested, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	cmd.Flags().StringArrayVar(&tagFilter, "tag", nil, "Tag keyword to print (repeatable); default shows every known tag")
	return cmd
}

func runInspectFile(ctx *commandContext, cmd *cobra.Command, path string, requested []string, jsonOutput bool) error {
	set, err := ctx.loadRules()
	if err != nil {
		return err
	}
	meta, err := dicomtag.NewReader().Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var matched []string
	var missingTags []string
	for _, category := range set.Categories() {
		ok, err := set.Matches(category, meta)
		if err != nil {
			missingTags = append(missingTags, fmt.Sprintf("%s: %v", category, err))
			continue
		}
		if ok {
			matched = append(matched, category)
		}
	}

	rows := keywordRows(meta, requested)
	if jsonOutput {
		return writeJSON(cmd, struct {
			Path    string            `json:"path"`
			Tags    map[string]string `json:"tags"`
			Matched []string          `json:"matched"`
		}{Path: path, Tags: rowsToMap(rows), Matched: matched})
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		return errors.New("no known tags found; is this a DICOM file?")
	}
	fmt.Fprintln(out, renderTable([]string{"Tag", "Value"}, rows, nil))

	if len(matched) > 0 {
		fmt.Fprintf(out, "Matches: %s\n", strings.Join(matched, ", "))
	} else {
		fmt.Fprintln(out, "Matches: none")
	}
	for _, problem := range missingTags {
		fmt.Fprintln(out, renderStatusLine("Rule skipped", statusWarn, problem, shouldColorize(out)))
	}
	return nil
}

// runInspectSurvey walks the source tree under the scan constraints and shows
// the tags of the first candidate file in each series directory.
func runInspectSurvey(ctx *commandContext, cmd *cobra.Command, requested []string, jsonOutput bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	reader, closeReader, err := ctx.tagReader(logger)
	if err != nil {
		return err
	}
	defer closeReader()

	type surveyEntry struct {
		Path string            `json:"path"`
		Tags map[string]string `json:"tags"`
	}
	var entries []surveyEntry

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	constraints := classify.ConstraintsFromConfig(cfg)
	doneDirs := make(map[string]bool)

	walkErr := filepath.WalkDir(cfg.Paths.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		dir := filepath.Dir(path)
		if doneDirs[dir] {
			return nil
		}
		ok, err := constraints.Accept(path)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		doneDirs[dir] = true

		meta, err := reader.Read(path)
		if err != nil {
			if !jsonOutput {
				fmt.Fprintln(out, renderStatusLine("Read failed", statusWarn, fmt.Sprintf("%s: %v", path, err), colorize))
			}
			return nil
		}

		rows := keywordRows(meta, requested)
		entries = append(entries, surveyEntry{Path: path, Tags: rowsToMap(rows)})
		if !jsonOutput {
			fmt.Fprintf(out, "\n%s\n", path)
			fmt.Fprintln(out, renderTable([]string{"Tag", "Value"}, rows, nil))
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walk %s: %w", cfg.Paths.SourceDir, walkErr)
	}

	if jsonOutput {
		return writeJSON(cmd, struct {
			Source      string        `json:"source"`
			Directories []surveyEntry `json:"directories"`
		}{Source: cfg.Paths.SourceDir, Directories: entries})
	}
	fmt.Fprintf(out, "Inspected %d series directories\n", len(entries))
	return nil
}

// normalizeTagFilter validates the repeatable --tag values against the known
// keyword dictionary.
func normalizeTagFilter(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, nil
	}
	known := make(map[string]bool)
	for _, keyword := range dicomtag.Keywords() {
		known[keyword] = true
	}
	out := make([]string, 0, len(requested))
	for _, keyword := range requested {
		keyword = strings.TrimSpace(keyword)
		if !known[keyword] {
			return nil, fmt.Errorf("unknown tag keyword %q; known keywords: %s",
				keyword, strings.Join(dicomtag.Keywords(), ", "))
		}
		out = append(out, keyword)
	}
	return out, nil
}

// keywordRows lists keyword/value pairs in dictionary order. When specific
// keywords were requested those are shown in the requested order, absent ones
// with an empty value.
func keywordRows(meta dicomtag.Metadata, requested []string) [][]string {
	if len(requested) > 0 {
		rows := make([][]string, 0, len(requested))
		for _, keyword := range requested {
			value, _ := meta.Get(keyword)
			rows = append(rows, []string{keyword, value})
		}
		return rows
	}
	rows := make([][]string, 0, len(meta))
	for _, keyword := range dicomtag.Keywords() {
		if value, ok := meta.Get(keyword); ok {
			rows = append(rows, []string{keyword, value})
		}
	}
	return rows
}

func rowsToMap(rows [][]string) map[string]string {
	tags := make(map[string]string, len(rows))
	for _, row := range rows {
		tags[row[0]] = row[1]
	}
	return tags
}
