package workers

import (
	"os"
	"runtime"
	"strconv"
)

const (
	// MinWorkers is the smallest pool ever returned by Count.
	MinWorkers = 2
	// MaxWorkers is the absolute ceiling regardless of core count.
	MaxWorkers = 32
)

// Count returns the pool size for a given task multiplier.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 4.0 for I/O-bound tasks such as directory walking
//
// The result is clamped to [MinWorkers, min(4×cores, MaxWorkers)].
//
// Can be overridden with the REKORDBOX_WORKERS environment variable,
// which is only subject to the ceiling.
func Count(multiplier float64) int {
	ceiling := 4 * runtime.GOMAXPROCS(0)
	if ceiling > MaxWorkers {
		ceiling = MaxWorkers
	}

	// Manual override bypasses the multiplier and the floor.
	if override := os.Getenv("REKORDBOX_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if count > ceiling {
				return ceiling
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)
	count := int(float64(available) * multiplier)

	if count < MinWorkers {
		count = MinWorkers
	}
	if count > ceiling {
		count = ceiling
	}

	return count
}

// ForResolution returns the pool size for filename resolution, which is
// I/O-bound (stat calls and directory reads).
func ForResolution() int {
	return Count(4.0)
}
