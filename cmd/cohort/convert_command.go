package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cohort/internal/bundle"
	"cohort/internal/preflight"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var policyFlag string
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Classify the source tree and pack matched series into archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := parsePolicy(policyFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if !skipPreflight {
				results := preflight.RunAll(cmd.Context(), cfg)
				for _, res := range results {
					kind := statusError
					if res.Passed {
						kind = statusOK
					}
					fmt.Fprintln(out, renderStatusLine(res.Name, kind, res.Detail, colorize))
				}
				if !preflight.AllPassed(results) {
					return errors.New("preflight checks failed; fix the reported problems or rerun with --skip-preflight")
				}
			}

			result, err := runClassification(ctx, cmd, policy)
			if err != nil {
				return err
			}
			if result.index.Len() == 0 {
				fmt.Fprintln(out, "No series matched any category; nothing to convert.")
				return nil
			}

			var sink bundle.Sink = bundle.New(cfg, logger)
			summary, err := sink.Run(cmd.Context(), result.index)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(summary.Artifacts))
			for _, artifact := range summary.Artifacts {
				status := "written"
				if artifact.Skipped {
					status = "skipped"
				}
				rows = append(rows, []string{
					artifact.Case,
					artifact.Category,
					artifact.Archive,
					strconv.Itoa(artifact.Files),
					status,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Case", "Category", "Archive", "Files", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "Run %s: %d archives written, %d skipped\n", summary.RunID, summary.Written, summary.Skipped)

			if len(result.missing) > 0 {
				caseIDs := make([]string, 0, len(result.missing))
				for caseID := range result.missing {
					caseIDs = append(caseIDs, caseID)
				}
				sort.Strings(caseIDs)
				for _, caseID := range caseIDs {
					line := fmt.Sprintf("%s is missing %s", caseID, strings.Join(result.missing[caseID], ", "))
					fmt.Fprintln(out, renderStatusLine("Incomplete case", statusWarn, line, colorize))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFlag, "policy", "first", "Scan policy: first (one file per directory) or all")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before converting")
	return cmd
}
