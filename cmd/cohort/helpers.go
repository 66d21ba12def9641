package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cohort/internal/classify"
	"cohort/internal/rules"
)

type classificationResult struct {
	index   *classify.Index
	stats   classify.Stats
	set     *rules.Set
	missing map[string][]string
}

// runClassification wires the rule set, metadata reader, and classifier
// together and walks the configured source tree.
func runClassification(ctx *commandContext, cmd *cobra.Command, policy classify.ScanPolicy) (*classificationResult, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	set, err := ctx.loadRules()
	if err != nil {
		return nil, err
	}
	reader, closeReader, err := ctx.tagReader(logger)
	if err != nil {
		return nil, err
	}
	defer closeReader()

	classifier := classify.New(cfg, set, reader, logger, classify.WithPolicy(policy))
	index, stats, err := classifier.Run(cmd.Context())
	if err != nil {
		return nil, err
	}
	return &classificationResult{
		index:   index,
		stats:   stats,
		set:     set,
		missing: classify.FindMissing(index, set),
	}, nil
}

func parsePolicy(value string) (classify.ScanPolicy, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "first":
		return classify.FirstCandidatePerDir, nil
	case "all":
		return classify.EveryCandidate, nil
	default:
		return 0, fmt.Errorf("unknown scan policy %q (use first or all)", value)
	}
}
