package metacache

import (
	"context"
	"log/slog"
	"os"

	"cohort/internal/dicomtag"
	"cohort/internal/logging"
)

// CachingReader decorates a metadata reader with the cache. Cache failures
// degrade to a plain read; they never fail classification.
type CachingReader struct {
	inner  dicomtag.Reader
	cache  *Cache
	logger *slog.Logger
}

// NewReader wraps inner with cache lookups.
func NewReader(inner dicomtag.Reader, cache *Cache, logger *slog.Logger) *CachingReader {
	return &CachingReader{
		inner:  inner,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "metacache"),
	}
}

// Read returns cached tags when the file is unchanged, otherwise defers to
// the wrapped reader and stores the result.
func (r *CachingReader) Read(path string) (dicomtag.Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return r.inner.Read(path)
	}
	size := info.Size()
	mtime := info.ModTime().UnixNano()
	ctx := context.Background()

	if tags, hit, err := r.cache.Lookup(ctx, path, size, mtime); err != nil {
		r.logger.Warn("cache lookup failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
		)
	} else if hit {
		return dicomtag.Metadata(tags), nil
	}

	meta, err := r.inner.Read(path)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Store(ctx, path, size, mtime, meta); err != nil {
		r.logger.Warn("cache store failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
		)
	}
	return meta, nil
}
