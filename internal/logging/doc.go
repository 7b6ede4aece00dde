// Package logging assembles structured slog loggers and formatting helpers used
// across marquee.
//
// It owns the console and JSON handlers, mirrors records into a JSON log file
// when a log directory is configured, and exposes context-aware helpers so
// pipeline code tags log lines with the title position, title, stage, and run
// identifier. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
package logging
