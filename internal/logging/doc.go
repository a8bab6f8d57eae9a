// Package logging assembles structured slog loggers and formatting helpers used
// across the overlay.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline and overlay code can
// tag log lines with the playback session, video, and active style. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
