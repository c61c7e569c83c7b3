// Package worldrun wires configuration, preflight checks, the run ledger,
// the world store and the repair pipeline into the one-shot operations the
// CLI exposes: compress, scan, purge and restore.
//
// Every mutating operation holds an exclusive flock on the state folder's
// lock file for its whole duration.
package worldrun
