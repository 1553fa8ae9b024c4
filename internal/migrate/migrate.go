package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lcrostarosa/rekordbox-migrator/internal/library"
	"github.com/lcrostarosa/rekordbox-migrator/internal/location"
	"github.com/lcrostarosa/rekordbox-migrator/internal/logging"
	"github.com/lcrostarosa/rekordbox-migrator/internal/metrics"
	"github.com/lcrostarosa/rekordbox-migrator/internal/resolver"
	"github.com/lcrostarosa/rekordbox-migrator/internal/scanner"
	"github.com/lcrostarosa/rekordbox-migrator/internal/workers"
)

// BackupSuffix is appended to the document path for the pre-run copy.
const BackupSuffix = ".backup"

// Options configures a run.
type Options struct {
	// DocumentPath is the Rekordbox XML export to rewrite.
	DocumentPath string
	// NewRoot is the directory the collection moved to.
	NewRoot string
	// DryRun reports what would change without touching anything.
	DryRun bool
	// NoBackup skips the .backup copy before rewriting.
	NoBackup bool
	// Workers sizes the resolver pool. 0 picks a size from the CPU count.
	Workers int
}

// Summary is the aggregate outcome of one run. Misses holds one message
// per unresolved track, in document order. It is reported, never persisted.
type Summary struct {
	Updated   int
	NotFound  int
	Unchanged int
	Misses    []string
}

// Total returns the number of track references processed.
func (s *Summary) Total() int {
	return s.Updated + s.NotFound + s.Unchanged
}

// Migrator runs the rewrite.
type Migrator struct {
	opts Options
	log  *logging.Logger
}

// New creates a Migrator. The logger is required: all run events flow
// through it.
func New(opts Options, log *logging.Logger) *Migrator {
	return &Migrator{opts: opts, log: log}
}

type workItem struct {
	index    int
	filename string
	ref      string
}

type resolution struct {
	result resolver.Result
	err    error
}

type update struct {
	index int
	ref   string
}

// Run executes a full migration. A non-nil error is fatal (bad input,
// unparseable document, failed write); per-track misses are not errors —
// they accumulate in the Summary and the run continues.
func (m *Migrator) Run(ctx context.Context) (*Summary, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	workerCount := m.opts.Workers
	if workerCount <= 0 {
		workerCount = workers.ForResolution()
	}
	metrics.WorkerPoolSize.Set(float64(workerCount))

	lib, err := library.Load(m.opts.DocumentPath)
	if err != nil {
		return nil, err
	}

	items := m.collect(lib)
	if len(items) == 0 {
		m.log.Warn("no track references found in %s", m.opts.DocumentPath)
		return &Summary{}, nil
	}

	res := resolver.New(m.opts.NewRoot, m.scannerConfig(workerCount), m.log)
	defer res.Close()
	results := m.resolveAll(ctx, res, items, workerCount)

	summary, updates := m.decide(items, results)

	if m.opts.DryRun {
		m.log.Info("dry run: document not modified")
		m.logMetrics()
		return summary, nil
	}

	if err := m.commit(lib, updates); err != nil {
		return nil, err
	}
	m.logMetrics()
	return summary, nil
}

// validate is the Init phase: both inputs must be usable before any work
// starts, and nothing is created when they are not.
func (m *Migrator) validate() error {
	info, err := os.Stat(m.opts.DocumentPath)
	if err != nil {
		return fmt.Errorf("library file %s: %w", m.opts.DocumentPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("library path %s is a directory, expected an XML file", m.opts.DocumentPath)
	}

	rootInfo, err := os.Stat(m.opts.NewRoot)
	if err != nil {
		return fmt.Errorf("new root %s: %w", m.opts.NewRoot, err)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf("new root %s is not a directory", m.opts.NewRoot)
	}

	return nil
}

// collect builds the work list: one item per track reference, decoded to
// the filename we will search for.
func (m *Migrator) collect(lib *library.Library) []workItem {
	start := time.Now()

	refs := lib.Locations()
	items := make([]workItem, len(refs))
	for i, ref := range refs {
		items[i] = workItem{
			index:    ref.Index,
			filename: location.Decode(ref.Location),
			ref:      ref.Location,
		}
	}

	metrics.PhaseDuration.WithLabelValues("collect").Observe(time.Since(start).Seconds())
	m.log.Info("collected %d track references from %s (%d tracks total)",
		len(items), m.opts.DocumentPath, lib.TrackCount())
	return items
}

// resolveAll fans the work list out to the pool. Results land in a slice
// indexed by work-list position, so completion order never matters.
func (m *Migrator) resolveAll(ctx context.Context, res *resolver.Resolver, items []workItem, workerCount int) []resolution {
	start := time.Now()
	m.log.Debug("resolving %d filenames with %d workers", len(items), workerCount)

	results := make([]resolution, len(items))
	jobs := make(chan int, len(items))

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := res.Resolve(ctx, items[i].filename)
				results[i] = resolution{result: r, err: err}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	metrics.PhaseDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())
	return results
}

// decide walks the work list in order and classifies every entry. This is
// the only place outcomes are counted, so logs and summaries are
// reproducible for a fixed filesystem no matter how resolution interleaved.
func (m *Migrator) decide(items []workItem, results []resolution) (*Summary, []update) {
	summary := &Summary{}
	var updates []update

	verb := "updated"
	if m.opts.DryRun {
		verb = "would update"
	}

	for i, item := range items {
		r := results[i]
		switch {
		case r.err != nil:
			summary.NotFound++
			metrics.TrackOutcomesTotal.WithLabelValues("not_found").Inc()
			msg := fmt.Sprintf("File not found: %s (lookup failed: %v)",
				filepath.Join(m.opts.NewRoot, item.filename), r.err)
			summary.Misses = append(summary.Misses, msg)
			m.log.Error("%s", msg)

		case !r.result.Found:
			summary.NotFound++
			metrics.TrackOutcomesTotal.WithLabelValues("not_found").Inc()
			msg := "File not found: " + filepath.Join(m.opts.NewRoot, item.filename)
			summary.Misses = append(summary.Misses, msg)
			m.log.Warn("%s", msg)

		default:
			newRef := location.Encode(m.opts.NewRoot, item.filename)
			if newRef == item.ref {
				summary.Unchanged++
				metrics.TrackOutcomesTotal.WithLabelValues("unchanged").Inc()
				m.log.Debug("unchanged: %s", item.filename)
				continue
			}
			summary.Updated++
			metrics.TrackOutcomesTotal.WithLabelValues("updated").Inc()
			updates = append(updates, update{index: item.index, ref: newRef})
			m.log.Info("%s: %s", verb, item.filename)
		}
	}

	return summary, updates
}

// commit performs the mutating phase: backup, in-memory rewrites in
// work-list order, then an atomic replacement of the document. With no
// pending updates nothing is written at all, backup included.
func (m *Migrator) commit(lib *library.Library, updates []update) error {
	if len(updates) == 0 {
		m.log.Info("no references to rewrite; document left untouched")
		return nil
	}

	start := time.Now()

	backupPath := ""
	if !m.opts.NoBackup {
		backupPath = m.opts.DocumentPath + BackupSuffix
		if err := copyFile(m.opts.DocumentPath, backupPath); err != nil {
			return fmt.Errorf("backup to %s failed, original document untouched: %w", backupPath, err)
		}
		m.log.Info("backup created: %s", backupPath)
	}

	for _, u := range updates {
		if err := lib.SetLocation(u.index, u.ref); err != nil {
			return fmt.Errorf("apply update%s, original document untouched: %w",
				backupNote(backupPath), err)
		}
	}

	data, err := lib.Serialize()
	if err != nil {
		return fmt.Errorf("serialize library%s, original document untouched: %w",
			backupNote(backupPath), err)
	}

	if err := writeAtomic(m.opts.DocumentPath, data); err != nil {
		return fmt.Errorf("write %s%s, original document untouched: %w",
			m.opts.DocumentPath, backupNote(backupPath), err)
	}

	metrics.PhaseDuration.WithLabelValues("commit").Observe(time.Since(start).Seconds())
	m.log.Info("rewrote %d references in %s", len(updates), m.opts.DocumentPath)
	return nil
}

// backupNote states which artifacts exist when the commit phase dies, so
// the message always tells the user where the good copy is.
func backupNote(backupPath string) string {
	if backupPath == "" {
		return ""
	}
	return " (backup preserved at " + backupPath + ")"
}

func (m *Migrator) scannerConfig(workerCount int) scanner.Config {
	cfg := scanner.DefaultConfig()
	cfg.NumWorkers = workerCount
	return cfg
}

func (m *Migrator) logMetrics() {
	if !m.log.IsDebugEnabled() {
		return
	}
	lines, err := metrics.Summary()
	if err != nil {
		m.log.Debug("metrics summary unavailable: %v", err)
		return
	}
	m.log.Debug("run metrics:")
	for _, line := range lines {
		m.log.Debug("  %s", line)
	}
}
