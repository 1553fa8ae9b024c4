// Command rekordbox-migrator rewrites the Location references in a
// Rekordbox XML export after a music collection has moved to a new root
// directory.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lcrostarosa/rekordbox-migrator/internal/logging"
	"github.com/lcrostarosa/rekordbox-migrator/internal/metrics"
	"github.com/lcrostarosa/rekordbox-migrator/internal/migrate"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	flagDryRun   bool
	flagNoBackup bool
	flagWorkers  int
	flagLogDir   string
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "rekordbox-migrator <library.xml> <new-root>",
	Short: "Rewrite Rekordbox track locations after moving a music collection",
	Long: `rekordbox-migrator updates the Location attribute of every track in a
Rekordbox XML export so that it points into a new root directory. Each
reference is decoded to a filename, the new root is searched for that file
(subdirectories included), and matches are rewritten in place after a
backup of the original document is taken.

Tracks whose files cannot be found are reported and left untouched; they
never abort a run.`,
	Args:          cobra.ExactArgs(2),
	RunE:          runMigration,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       fmt.Sprintf("%s (commit %s, built %s, %s)", Version, Commit, BuildTime, runtime.Version()),
}

func init() {
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Report what would change without modifying anything")
	rootCmd.Flags().BoolVar(&flagNoBackup, "no-backup", false, "Skip the .backup copy of the original document")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Resolver pool size (0 = auto, REKORDBOX_WORKERS override)")
	rootCmd.Flags().StringVar(&flagLogDir, "log-dir", "", "Log directory (default \"logs\", LOG_DIR override)")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMigration(cmd *cobra.Command, args []string) error {
	start := time.Now()

	logDir := flagLogDir
	if logDir == "" {
		if env := os.Getenv("LOG_DIR"); env != "" {
			logDir = env
		} else {
			logDir = "logs"
		}
	}

	log := logging.New(logging.Options{
		Level: logging.LevelFromEnv(flagDebug),
		Dir:   logDir,
	})
	defer log.Close()

	metrics.Initialize()

	opts := migrate.Options{
		DocumentPath: args[0],
		NewRoot:      args[1],
		DryRun:       flagDryRun,
		NoBackup:     flagNoBackup,
		Workers:      flagWorkers,
	}

	log.Info("rekordbox-migrator %s", Version)
	log.Info("library:  %s", opts.DocumentPath)
	log.Info("new root: %s", opts.NewRoot)
	if opts.DryRun {
		log.Info("DRY RUN - no changes will be made")
	}

	summary, err := migrate.New(opts, log).Run(context.Background())
	if err != nil {
		log.Error("%v", err)
		return err
	}

	printSummary(cmd, summary, time.Since(start))
	return nil
}

func printSummary(cmd *cobra.Command, summary *migrate.Summary, elapsed time.Duration) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, strings.Repeat("-", 50))
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  Updated:   %d\n", summary.Updated)
	fmt.Fprintf(out, "  Unchanged: %d\n", summary.Unchanged)
	fmt.Fprintf(out, "  Not found: %d\n", summary.NotFound)
	fmt.Fprintf(out, "  Elapsed:   %v\n", elapsed.Round(time.Millisecond))

	if len(summary.Misses) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Files not found at the new location:")
		for _, miss := range summary.Misses {
			fmt.Fprintf(out, "  - %s\n", miss)
		}
	}

	if flagDryRun && summary.Updated > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To apply these changes, run again without --dry-run")
	}
}
