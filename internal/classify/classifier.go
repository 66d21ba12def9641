package classify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"cohort/internal/config"
	"cohort/internal/dicomtag"
	"cohort/internal/errs"
	"cohort/internal/logging"
	"cohort/internal/rules"
)

// Stats summarizes one classification pass.
type Stats struct {
	DirsVisited    int
	FilesInspected int
	Matches        int
}

// Classifier drives the candidate filter and the tag matcher over a source
// tree and builds the path index.
type Classifier struct {
	source      string
	identityTag string
	set         *rules.Set
	reader      dicomtag.Reader
	constraints Constraints
	policy      ScanPolicy
	logger      *slog.Logger
}

// Option adjusts classifier construction.
type Option func(*Classifier)

// WithPolicy overrides the default first-candidate-per-directory scan policy.
func WithPolicy(policy ScanPolicy) Option {
	return func(c *Classifier) { c.policy = policy }
}

// WithConstraints overrides the config-derived candidate constraints.
func WithConstraints(constraints Constraints) Option {
	return func(c *Classifier) { c.constraints = constraints }
}

// New constructs a classifier for one run.
func New(cfg *config.Config, set *rules.Set, reader dicomtag.Reader, logger *slog.Logger, opts ...Option) *Classifier {
	c := &Classifier{
		source:      cfg.Paths.SourceDir,
		identityTag: cfg.Scan.IdentityTag,
		set:         set,
		reader:      reader,
		constraints: ConstraintsFromConfig(cfg),
		policy:      FirstCandidatePerDir,
		logger:      logging.NewComponentLogger(logger, "classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run walks the source tree once and returns the populated index. A missing
// required tag aborts the walk with a configuration error; IO failures
// propagate unretried. The returned index is complete only on a nil error,
// but a partial index is still returned alongside non-fatal completeness
// gaps, which are never errors here.
func (c *Classifier) Run(ctx context.Context) (*Index, Stats, error) {
	logger := logging.WithContext(ctx, c.logger)
	index := NewIndex()
	stats := Stats{}

	categories := c.set.Categories()
	logger.Info("starting classification",
		logging.String(logging.FieldPath, c.source),
		logging.Int("categories", len(categories)),
		logging.String("scan_policy", c.policy.String()),
	)

	subjectIdentity := make(map[string]string)
	doneDirs := make(map[string]bool)

	err := filepath.WalkDir(c.source, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errs.Wrap(errs.ErrIO, "classifier", "walk", fmt.Sprintf("visit %s", path), walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			stats.DirsVisited++
			return nil
		}

		dir := filepath.Dir(path)
		if c.policy == FirstCandidatePerDir && doneDirs[dir] {
			return nil
		}

		ok, err := c.constraints.Accept(path)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if c.policy == FirstCandidatePerDir {
			doneDirs[dir] = true
		}

		stats.FilesInspected++
		matched, err := c.inspect(logger, index, path, categories, subjectIdentity)
		if err != nil {
			return err
		}
		stats.Matches += matched
		return nil
	})
	if err != nil {
		return index, stats, err
	}

	logger.Info("classification complete",
		logging.Int("dirs_visited", stats.DirsVisited),
		logging.Int("files_inspected", stats.FilesInspected),
		logging.Int("matches", stats.Matches),
		logging.Int("cases", index.Len()),
	)
	logger.Debug("path index", logging.Any("index", index.Snapshot()))
	return index, stats, nil
}

// inspect reads one representative file and evaluates every category.
func (c *Classifier) inspect(logger *slog.Logger, index *Index, path string, categories []string, subjectIdentity map[string]string) (int, error) {
	meta, err := c.reader.Read(path)
	if err != nil {
		return 0, err
	}

	caseID := c.caseIdentity(logger, meta, path)
	c.checkSubjectIdentity(logger, subjectIdentity, path, caseID)

	matched := 0
	for _, category := range categories {
		ok, err := c.set.Matches(category, meta)
		if err != nil {
			var missing *rules.MissingTagError
			if errors.As(err, &missing) {
				return matched, errs.Wrap(errs.ErrConfiguration, "classifier", "match",
					fmt.Sprintf("case %q file %s", caseID, path), err)
			}
			return matched, err
		}
		logging.Trace(logger, "rule evaluated",
			logging.String(logging.FieldCategory, category),
			logging.String(logging.FieldPath, path),
			logging.Bool("matched", ok),
		)
		if ok {
			index.Put(caseID, category, path)
			matched++
			logger.Debug("found",
				logging.String(logging.FieldCase, caseID),
				logging.String(logging.FieldCategory, category),
				logging.String(logging.FieldPath, path),
			)
		}
	}
	return matched, nil
}

// caseIdentity derives the index key from the configured identity tag of the
// inspected file itself. Identity is re-derived per file, so divergent
// metadata inside one subject tree fragments the case; that is a source-data
// hazard the classifier reports but does not correct.
func (c *Classifier) caseIdentity(logger *slog.Logger, meta dicomtag.Metadata, path string) string {
	value, ok := meta.Get(c.identityTag)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		logger.Warn("identity tag absent, using fallback case",
			logging.String("identity_tag", c.identityTag),
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldAlert, "unidentified_case"),
		)
		return "unknown"
	}
	return value
}

// checkSubjectIdentity flags subject directories that resolve to more than
// one case identity across their series.
func (c *Classifier) checkSubjectIdentity(logger *slog.Logger, seen map[string]string, path, caseID string) {
	rel, err := filepath.Rel(c.source, path)
	if err != nil {
		return
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return
	}
	subject := parts[0]
	if prior, ok := seen[subject]; ok {
		if prior != caseID {
			logger.Warn("subject tree yields divergent case identities",
				logging.String("subject_dir", subject),
				logging.String("first_case", prior),
				logging.String("second_case", caseID),
				logging.String(logging.FieldAlert, "fragmented_case"),
			)
		}
		return
	}
	seen[subject] = caseID
}
