// Package preflight validates a compress run's inputs before anything on
// disk is touched: the user data, world and core folders, the ffmpeg
// binary and the purge confirmation flag.
//
// These checks run in two contexts:
//   - worldrun calls RunAll and aborts with a configuration error when any
//     check fails.
//   - The CLI "config validate" command prints every Result as a table.
package preflight
