// Package logging assembles the slog loggers used by worldmanager.
//
// It owns the console and JSON handlers, an optional rotating log file
// (lumberjack) that receives JSON records alongside the console stream, and
// small helpers for standardized attributes. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
