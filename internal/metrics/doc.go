// Package metrics defines Prometheus collectors for a migration run.
// There is no scrape endpoint; the collectors are gathered at the end of
// a run and written to the debug log so long runs can be profiled from
// their log file alone.
package metrics
