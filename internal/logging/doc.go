// Package logging provides the leveled logger handed to the migration
// engine. Every line is echoed to standard output (with ANSI colors when
// stdout is a terminal) and mirrored to a timestamped file under the log
// directory. Log file trouble is never fatal.
package logging
