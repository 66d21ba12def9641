package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cohort/internal/textutil"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var policyFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show per-case category coverage and missing categories",
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
					Coverage map[string]map[string]string `json:"coverage"`
					Missing  map[string][]string          `json:"missing"`
				}{Coverage: result.index.Snapshot(), Missing: result.missing})
			}

			out := cmd.OutOrStdout()
			if result.index.Len() == 0 {
				fmt.Fprintln(out, "No cases found.")
				return nil
			}

			categories := result.set.Categories()
			headers := make([]string, 0, len(categories)+1)
			headers = append(headers, "Case")
			for _, category := range categories {
				headers = append(headers, textutil.DisplayLabel(category))
			}

			rows := make([][]string, 0, result.index.Len())
			complete := 0
			for _, caseID := range result.index.Cases() {
				row := []string{caseID}
				for _, category := range categories {
					if _, found := result.index.Lookup(caseID, category); found {
						row = append(row, "x")
					} else {
						row = append(row, "")
					}
				}
				if len(result.missing[caseID]) == 0 {
					complete++
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(out, renderTable(headers, rows, nil))
			fmt.Fprintf(out, "%d of %d cases complete\n", complete, result.index.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFlag, "policy", "first", "Scan policy: first (one file per directory) or all")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
