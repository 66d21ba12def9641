package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cohort/internal/config"
	"cohort/internal/tables"
)

func newTablesCommand(ctx *commandContext) *cobra.Command {
	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "Spreadsheet post-processing utilities",
	}

	tablesCmd.AddCommand(newTablesCleanCommand(ctx))
	tablesCmd.AddCommand(newTablesMergeCommand(ctx))

	return tablesCmd
}

func newTablesCleanCommand(ctx *commandContext) *cobra.Command {
	var srcFlag string
	var dstFlag string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize missing values and drop incomplete rows from subject tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			src, dst, err := resolveSrcDst(srcFlag, dstFlag)
			if err != nil {
				return err
			}

			cleaner := tables.NewCleaner(src, dst, cfg.Tables.Dims, logger)
			stats, err := cleaner.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Cleaned %d tables across %d subjects (%d rows dropped, %d empty tables dropped)\n",
				stats.TablesCleaned, stats.Subjects, stats.RowsDropped, stats.TablesDropped)
			return nil
		},
	}

	cmd.Flags().StringVar(&srcFlag, "src", "", "Directory with raw per-subject tables (required)")
	cmd.Flags().StringVar(&dstFlag, "dst", "", "Directory for cleaned tables (required)")
	return cmd
}

func newTablesMergeCommand(ctx *commandContext) *cobra.Command {
	var srcFlag string
	var dstFlag string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Reduce cleaned tables to peak values and merge them with metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			src, dst, err := resolveSrcDst(srcFlag, dstFlag)
			if err != nil {
				return err
			}

			merger := tables.NewMerger(cfg.Tables, src, dst, logger)
			out, err := merger.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote merged workbook to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&srcFlag, "src", "", "Directory with cleaned per-subject tables (required)")
	cmd.Flags().StringVar(&dstFlag, "dst", "", "Directory for the merged workbook (required)")
	return cmd
}

func resolveSrcDst(src, dst string) (string, string, error) {
	if strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" {
		return "", "", errors.New("--src and --dst are required")
	}
	srcPath, err := config.ExpandPath(src)
	if err != nil {
		return "", "", err
	}
	dstPath, err := config.ExpandPath(dst)
	if err != nil {
		return "", "", err
	}
	return srcPath, dstPath, nil
}
