package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var policyFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Scan the source tree and build the case/category index",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := parsePolicy(policyFlag)
			if err != nil {
				return err
			}
			result, err := runClassification(ctx, cmd, policy)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					Index   map[string]map[string]string `json:"index"`
					Missing map[string][]string          `json:"missing"`
					Stats   any                          `json:"stats"`
				}{
					Index:   result.index.Snapshot(),
					Missing: result.missing,
					Stats:   result.stats,
				})
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, result.index.Len())
			for _, caseID := range result.index.Cases() {
				for _, category := range result.index.Categories(caseID) {
					location, _ := result.index.Lookup(caseID, category)
					rows = append(rows, []string{caseID, category, location})
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No series matched any category.")
			} else {
				fmt.Fprintln(out, renderTable([]string{"Case", "Category", "Series File"}, rows, nil))
			}
			fmt.Fprintf(out, "%d cases, %d matches (%d directories visited, %d files inspected)\n",
				result.index.Len(), result.stats.Matches, result.stats.DirsVisited, result.stats.FilesInspected)

			if len(result.missing) > 0 {
				caseIDs := make([]string, 0, len(result.missing))
				for caseID := range result.missing {
					caseIDs = append(caseIDs, caseID)
				}
				sort.Strings(caseIDs)
				fmt.Fprintln(out, "\nIncomplete cases:")
				for _, caseID := range caseIDs {
					fmt.Fprintf(out, "  %s: missing %s\n", caseID, strings.Join(result.missing[caseID], ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFlag, "policy", "first", "Scan policy: first (one file per directory) or all")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
