package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Level represents the severity of a log message
type Level int

const (
	// LevelDebug is the debug log level
	LevelDebug Level = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

func (l Level) tag() string {
	switch l {
	case LevelDebug:
		return "[DEBUG]"
	case LevelInfo:
		return "[INFO]"
	case LevelWarn:
		return "[WARN]"
	case LevelError:
		return "[ERROR]"
	default:
		return "[?]"
	}
}

// ANSI color per level, used only when stdout is a terminal.
func (l Level) color() string {
	switch l {
	case LevelDebug:
		return "\033[36m" // cyan
	case LevelInfo:
		return "\033[32m" // green
	case LevelWarn:
		return "\033[33m" // yellow
	case LevelError:
		return "\033[31m" // red
	default:
		return ""
	}
}

const colorReset = "\033[0m"

// LevelFromEnv resolves the log level the same way the DEBUG and LOG_LEVEL
// environment variables have always been interpreted. The debug parameter
// (the --debug flag) takes precedence over both.
func LevelFromEnv(debug bool) Level {
	if debug {
		return LevelDebug
	}

	if v := os.Getenv("DEBUG"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return LevelDebug
		}
	}

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Options configures a Logger.
type Options struct {
	// Level is the minimum level that gets emitted.
	Level Level
	// Dir is the log directory. Empty disables the log file.
	Dir string
	// Stdout overrides the echo destination (defaults to os.Stdout).
	Stdout io.Writer
}

// Logger writes leveled messages to stdout and to a per-run log file.
// It is safe for use from multiple goroutines.
type Logger struct {
	mu     sync.Mutex
	level  Level
	stdout io.Writer
	color  bool

	file       *os.File
	fileFailed bool // first write failure warns once, then file output stops
}

// New creates a Logger. When opts.Dir is non-empty the logger creates the
// directory and a migrate-<timestamp>.log file inside it; if either fails
// it warns and carries on with stdout only.
func New(opts Options) *Logger {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	l := &Logger{
		level:  opts.Level,
		stdout: out,
		color:  isTerminal(out),
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			l.Warn("cannot create log directory %s: %v", opts.Dir, err)
			return l
		}
		name := "migrate-" + time.Now().Format("20060102-150405") + ".log"
		f, err := os.Create(filepath.Join(opts.Dir, name))
		if err != nil {
			l.Warn("cannot create log file in %s: %v", opts.Dir, err)
			return l
		}
		l.file = f
	}

	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// FilePath returns the path of the log file, or "" when file logging is off.
func (l *Logger) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Level returns the minimum level this logger emits.
func (l *Logger) Level() Level {
	return l.level
}

// IsDebugEnabled returns true if debug logging is enabled
func (l *Logger) IsDebugEnabled() bool {
	return l.level <= LevelDebug
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.Log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

// Log emits a single (level, message) event.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format("2006/01/02 15:04:05")

	l.mu.Lock()
	defer l.mu.Unlock()

	tag := level.tag()
	if l.color {
		tag = level.color() + tag + colorReset
	}
	fmt.Fprintf(l.stdout, "%s %s %s\n", ts, tag, msg)

	if l.file != nil && !l.fileFailed {
		if _, err := fmt.Fprintf(l.file, "%s %s %s\n", ts, level.tag(), msg); err != nil {
			l.fileFailed = true
			fmt.Fprintf(l.stdout, "%s %s log file write failed, continuing without it: %v\n",
				ts, LevelWarn.tag(), err)
		}
	}
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if err := l.file.Close(); err != nil {
			fmt.Fprintf(l.stdout, "failed to close log file: %v\n", err)
		}
		l.file = nil
	}
}

// Discard returns a logger that swallows everything. Used in tests.
func Discard() *Logger {
	return &Logger{level: LevelError + 1, stdout: io.Discard}
}
