// Package logging assembles structured slog loggers and formatting helpers used
// across reelcut.
//
// It owns the console and JSON handlers, level parsing, and the optional log
// file, and exposes context-aware helpers so stage code automatically tags
// log lines with the run ID, stage, chapter index, and correlation ID. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
