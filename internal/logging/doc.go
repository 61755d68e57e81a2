// Package logging wraps log/slog with the handlers and attribute helpers used
// across tidy.
//
// Console output is a compact human-readable line per record written to
// stderr, leaving stdout to the run report. When a log file is configured a
// JSON handler is fanned out next to the console one. Every record of a run
// carries its run_id so file logs can be matched to exported reports.
package logging
