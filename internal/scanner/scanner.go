package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lcrostarosa/rekordbox-migrator/internal/catalog"
	"github.com/lcrostarosa/rekordbox-migrator/internal/logging"
	"github.com/lcrostarosa/rekordbox-migrator/internal/metrics"
	"github.com/lcrostarosa/rekordbox-migrator/internal/workers"
)

// Config configures the parallel scan
type Config struct {
	// NumWorkers is the number of parallel workers (0 = auto based on CPU)
	NumWorkers int
	// BatchSize is the number of files to collect before sending to the catalog
	BatchSize int
	// ChannelBuffer is the size of the work channel buffer
	ChannelBuffer int
	// SkipHidden skips files and directories starting with "."
	SkipHidden bool
}

// DefaultConfig returns sensible defaults based on available resources
func DefaultConfig() Config {
	return Config{
		NumWorkers:    workers.ForResolution(),
		BatchSize:     500,
		ChannelBuffer: 1000,
		SkipHidden:    false,
	}
}

// Stats reports what a scan covered.
type Stats struct {
	Files  int64
	Dirs   int64
	Errors int64
}

type fileJob struct {
	path  string
	entry fs.DirEntry
}

// Scan walks the tree under root and records every file into cat.
// Unreadable entries are logged and skipped; only catalog failures or
// context cancellation abort the scan.
func Scan(ctx context.Context, root string, cat *catalog.Catalog, cfg Config, log *logging.Logger) (Stats, error) {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = workers.ForResolution()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}

	log.Debug("scanning %s with %d workers", root, cfg.NumWorkers)
	start := time.Now()

	var files, dirs, errCount atomic.Int64
	jobs := make(chan fileJob, cfg.ChannelBuffer)

	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < cfg.NumWorkers; i++ {
		g.Go(func() error {
			batch := make([]catalog.File, 0, cfg.BatchSize)
			for job := range jobs {
				info, err := job.entry.Info()
				if err != nil {
					errCount.Add(1)
					metrics.ScannerErrors.Inc()
					log.Debug("cannot stat %s: %v", job.path, err)
					continue
				}
				batch = append(batch, catalog.File{
					Name:    job.entry.Name(),
					Path:    job.path,
					Size:    info.Size(),
					ModTime: info.ModTime(),
				})
				files.Add(1)
				metrics.ScannerFilesIndexed.Inc()

				if len(batch) >= cfg.BatchSize {
					if err := cat.InsertBatch(ctx, batch); err != nil {
						return err
					}
					batch = batch[:0]
				}
			}
			return cat.InsertBatch(ctx, batch)
		})
	}

	g.Go(func() error {
		defer close(jobs)
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				errCount.Add(1)
				metrics.ScannerErrors.Inc()
				log.Warn("cannot access %s: %v", path, err)
				return nil
			}

			if cfg.SkipHidden && path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				dirs.Add(1)
				metrics.ScannerDirsWalked.Inc()
				return nil
			}

			select {
			case jobs <- fileJob{path: path, entry: d}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
	})

	err := g.Wait()

	duration := time.Since(start)
	metrics.ScanDuration.Observe(duration.Seconds())

	stats := Stats{Files: files.Load(), Dirs: dirs.Load(), Errors: errCount.Load()}
	log.Info("scan of %s complete: %d files, %d directories in %v (skipped: %d)",
		root, stats.Files, stats.Dirs, duration.Round(time.Millisecond), stats.Errors)

	return stats, err
}
