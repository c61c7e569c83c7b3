// Package logs reads back the rotating JSON log file written by
// internal/logging.
//
// Last returns the trailing lines with bounded memory. Follow polls for
// appended lines and starts over when lumberjack rotates the file. Both can
// keep only the records of one compress run.
package logs
