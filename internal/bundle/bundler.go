package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"cohort/internal/classify"
	"cohort/internal/config"
	"cohort/internal/errs"
	"cohort/internal/logging"
	"cohort/internal/textutil"
)

const lockFileName = ".cohort.lock"

// Artifact describes one archive produced or skipped during a run.
type Artifact struct {
	Case      string `json:"case"`
	Category  string `json:"category"`
	Archive   string `json:"archive"`
	SourceDir string `json:"source_dir"`
	Files     int    `json:"files"`
	Bytes     int64  `json:"bytes"`
	Skipped   bool   `json:"skipped,omitempty"`
}

// Summary aggregates the outcome of a bundling run.
type Summary struct {
	RunID     string     `json:"run_id"`
	StartedAt time.Time  `json:"started_at"`
	Written   int        `json:"written"`
	Skipped   int        `json:"skipped"`
	Artifacts []Artifact `json:"artifacts"`
}

// Sink consumes a classified index and materializes it somewhere. The archive
// bundler is the default implementation; commands program against this so an
// alternative destination can be dropped in without touching the pipeline.
type Sink interface {
	Run(ctx context.Context, ix *classify.Index) (Summary, error)
}

// Bundler packs classified series directories into per-case archives.
type Bundler struct {
	cfg    *config.Config
	logger *slog.Logger
	lock   *flock.Flock
}

var _ Sink = (*Bundler)(nil)

// New constructs a bundler writing beneath cfg.Paths.OutputDir.
func New(cfg *config.Config, logger *slog.Logger) *Bundler {
	return &Bundler{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "bundle"),
		lock:   flock.New(filepath.Join(cfg.Paths.OutputDir, lockFileName)),
	}
}

// Run packs every entry in ix into OutputDir/<case>/<case>_<category>.tar.gz.
// Existing archives are left alone unless overwrite_existing is set. The
// destination is guarded by a file lock so two runs never interleave writes.
func (b *Bundler) Run(ctx context.Context, ix *classify.Index) (Summary, error) {
	summary := Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	if ix == nil || ix.Len() == 0 {
		b.logger.Info("nothing to bundle", logging.String(logging.FieldRunID, summary.RunID))
		return summary, nil
	}

	if err := os.MkdirAll(b.cfg.Paths.OutputDir, 0o755); err != nil {
		return summary, errs.Wrap(errs.ErrIO, "bundle", "ensure output dir", "Failed to create output directory", err)
	}
	ok, err := b.lock.TryLock()
	if err != nil {
		return summary, errs.Wrap(errs.ErrIO, "bundle", "acquire lock", "Failed to acquire output directory lock", err)
	}
	if !ok {
		return summary, errs.Wrap(errs.ErrIO, "bundle", "acquire lock", "Another run is already writing to this output directory", nil)
	}
	defer func() {
		if unlockErr := b.lock.Unlock(); unlockErr != nil {
			b.logger.Warn("failed to release output lock", logging.Error(unlockErr))
		}
	}()

	logger := b.logger.With(logging.String(logging.FieldRunID, summary.RunID))
	logger.Info("bundling started",
		logging.Int("cases", ix.Len()),
		logging.String(logging.FieldPath, b.cfg.Paths.OutputDir))

	for _, caseID := range ix.Cases() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		caseToken := textutil.SanitizeToken(caseID)
		caseDir := filepath.Join(b.cfg.Paths.OutputDir, caseToken)
		for _, category := range ix.Categories(caseID) {
			location, found := ix.Lookup(caseID, category)
			if !found {
				continue
			}
			artifact, err := b.packOne(logger, caseID, caseToken, caseDir, category, location)
			if err != nil {
				return summary, err
			}
			summary.Artifacts = append(summary.Artifacts, artifact)
			if artifact.Skipped {
				summary.Skipped++
			} else {
				summary.Written++
			}
		}
	}

	if b.cfg.Bundle.WriteManifest {
		if err := b.writeManifest(summary); err != nil {
			return summary, err
		}
	}

	logger.Info("bundling completed",
		logging.Int("written", summary.Written),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}

func (b *Bundler) packOne(logger *slog.Logger, caseID, caseToken, caseDir, category, location string) (Artifact, error) {
	srcDir := filepath.Dir(location)
	archivePath := filepath.Join(caseDir, fmt.Sprintf("%s_%s.tar.gz", caseToken, textutil.SanitizeToken(category)))
	artifact := Artifact{
		Case:      caseID,
		Category:  category,
		Archive:   archivePath,
		SourceDir: srcDir,
	}

	if !b.cfg.Bundle.OverwriteExisting {
		if _, err := os.Stat(archivePath); err == nil {
			logger.Debug("archive exists, skipping",
				logging.String(logging.FieldCase, caseID),
				logging.String(logging.FieldCategory, category),
				logging.String(logging.FieldPath, archivePath))
			artifact.Skipped = true
			return artifact, nil
		}
	}

	if err := os.MkdirAll(caseDir, 0o755); err != nil {
		return artifact, errs.Wrap(errs.ErrIO, "bundle", "ensure case dir", "Failed to create case output directory", err)
	}
	files, bytes, err := writeArchive(archivePath, srcDir)
	if err != nil {
		return artifact, errs.Wrap(errs.ErrIO, "bundle", "write archive",
			fmt.Sprintf("Failed to pack %s for case %s", category, caseID), err)
	}
	artifact.Files = files
	artifact.Bytes = bytes

	logger.Info("archive written",
		logging.String(logging.FieldCase, caseID),
		logging.String(logging.FieldCategory, category),
		logging.String(logging.FieldPath, archivePath),
		logging.Int("files", files),
		logging.Int64("bytes", bytes))
	return artifact, nil
}

func (b *Bundler) writeManifest(summary Summary) error {
	path := filepath.Join(b.cfg.Paths.OutputDir, fmt.Sprintf("manifest-%s.json", summary.RunID))
	if err := writeManifestFile(path, summary); err != nil {
		return errs.Wrap(errs.ErrIO, "bundle", "write manifest", "Failed to write run manifest", err)
	}
	b.logger.Debug("manifest written", logging.String(logging.FieldPath, path))
	return nil
}
