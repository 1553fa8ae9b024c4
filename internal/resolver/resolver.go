package resolver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lcrostarosa/rekordbox-migrator/internal/catalog"
	"github.com/lcrostarosa/rekordbox-migrator/internal/logging"
	"github.com/lcrostarosa/rekordbox-migrator/internal/metrics"
	"github.com/lcrostarosa/rekordbox-migrator/internal/scanner"
)

// Result is the outcome of resolving one filename.
type Result struct {
	// Path is the absolute path of the match. Empty when not found.
	Path string
	// Found reports whether a file with the name exists under the root.
	Found bool
}

// Resolver finds files under a single root. Safe for concurrent use; the
// tree scan happens at most once regardless of how many workers miss the
// fast path simultaneously.
type Resolver struct {
	root string
	cfg  scanner.Config
	log  *logging.Logger

	indexOnce sync.Once
	cat       *catalog.Catalog
	indexErr  error
}

// New creates a Resolver for the given root directory.
func New(root string, cfg scanner.Config, log *logging.Logger) *Resolver {
	return &Resolver{root: root, cfg: cfg, log: log}
}

// Resolve locates filename under the root. The comparison is
// case-sensitive on the base name. Returned paths are absolute.
// An error means the index itself failed, not that the file is absent.
func (r *Resolver) Resolve(ctx context.Context, filename string) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	}()

	if filename == "" {
		metrics.ResolutionsTotal.WithLabelValues("not_found").Inc()
		return Result{}, nil
	}

	// Fast path: the file sits directly under the root.
	direct := filepath.Join(r.root, filename)
	if info, err := os.Stat(direct); err == nil && info.Mode().IsRegular() {
		metrics.ResolutionsTotal.WithLabelValues("found_direct").Inc()
		return Result{Path: absolute(direct), Found: true}, nil
	}

	if err := r.ensureIndex(ctx); err != nil {
		return Result{}, err
	}

	path, ok, err := r.cat.LookupByName(ctx, filename)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		metrics.ResolutionsTotal.WithLabelValues("not_found").Inc()
		return Result{}, nil
	}

	metrics.ResolutionsTotal.WithLabelValues("found_indexed").Inc()
	return Result{Path: absolute(path), Found: true}, nil
}

// ensureIndex builds the catalog on the first slow-path lookup.
func (r *Resolver) ensureIndex(ctx context.Context) error {
	r.indexOnce.Do(func() {
		cat, err := catalog.Open(ctx)
		if err != nil {
			r.indexErr = err
			return
		}
		if _, err := scanner.Scan(ctx, r.root, cat, r.cfg, r.log); err != nil {
			cat.Close()
			r.indexErr = err
			return
		}
		r.cat = cat
	})
	return r.indexErr
}

// Close releases the catalog, if one was built.
func (r *Resolver) Close() {
	if r.cat != nil {
		if err := r.cat.Close(); err != nil {
			r.log.Warn("failed to close catalog: %v", err)
		}
	}
}

func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
