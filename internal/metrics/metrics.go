package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution metrics
var (
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rekordbox_migrator_resolutions_total",
			Help: "Total filename resolutions by outcome",
		},
		[]string{"outcome"}, // "found_direct", "found_indexed", "not_found"
	)

	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rekordbox_migrator_resolution_duration_seconds",
			Help:    "Single filename resolution duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

// Scanner metrics
var (
	ScannerFilesIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rekordbox_migrator_scanner_files_indexed_total",
			Help: "Files recorded in the catalog while scanning the new root",
		},
	)

	ScannerDirsWalked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rekordbox_migrator_scanner_dirs_walked_total",
			Help: "Directories visited while scanning the new root",
		},
	)

	ScannerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rekordbox_migrator_scanner_errors_total",
			Help: "Unreadable entries skipped while scanning",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rekordbox_migrator_scan_duration_seconds",
			Help:    "Full tree scan duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)
)

// Run metrics
var (
	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rekordbox_migrator_phase_duration_seconds",
			Help:    "Duration of each orchestration phase in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"}, // "collect", "resolve", "commit"
	)

	TrackOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rekordbox_migrator_track_outcomes_total",
			Help: "Per-track outcomes of a run",
		},
		[]string{"outcome"}, // "updated", "unchanged", "not_found"
	)

	WorkerPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rekordbox_migrator_worker_pool_size",
			Help: "Resolver worker pool size for the current run",
		},
	)
)

// Initialize pre-populates all expected label combinations so every series
// appears in the end-of-run summary even when its count is zero.
// Call this once at startup.
func Initialize() {
	for _, outcome := range []string{"found_direct", "found_indexed", "not_found"} {
		ResolutionsTotal.WithLabelValues(outcome)
	}

	for _, phase := range []string{"collect", "resolve", "commit"} {
		PhaseDuration.WithLabelValues(phase)
	}

	for _, outcome := range []string{"updated", "unchanged", "not_found"} {
		TrackOutcomesTotal.WithLabelValues(outcome)
	}
}
