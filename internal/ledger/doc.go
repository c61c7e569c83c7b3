// Package ledger records compress runs in a SQLite database under the state
// folder: one row per run, one row per repair action, and a content-hash
// cache keyed by path, size and modification time so unchanged images are
// not re-hashed on the next run.
package ledger
