package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"worldmanager/internal/world"
)

var _ world.HashCache = (*Ledger)(nil)

// LookupHash returns the cached hash for path when size and modification
// time still match.
func (l *Ledger) LookupHash(path string, size int64, modTime time.Time) (string, bool) {
	var hash string
	err := l.db.QueryRowContext(context.Background(),
		"SELECT hash FROM hash_cache WHERE path = ? AND size = ? AND mod_time_ns = ?",
		path, size, modTime.UnixNano(),
	).Scan(&hash)
	if err != nil {
		return "", false
	}
	return hash, true
}

// StoreHash caches hash for path. Write failures only cost a re-hash next
// time, so they are dropped.
func (l *Ledger) StoreHash(path string, size int64, modTime time.Time, hash string) {
	_ = l.exec(context.Background(),
		`INSERT INTO hash_cache (path, size, mod_time_ns, hash) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET size = excluded.size, mod_time_ns = excluded.mod_time_ns, hash = excluded.hash`,
		path, size, modTime.UnixNano(), hash,
	)
}

// PruneHashes drops cache rows whose path no longer exists according to
// exists. It returns the number of rows removed.
func (l *Ledger) PruneHashes(ctx context.Context, exists func(path string) bool) (int, error) {
	ctx = ensureContext(ctx)
	rows, err := l.db.QueryContext(ctx, "SELECT path FROM hash_cache")
	if err != nil {
		return 0, err
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			_ = rows.Close()
			return 0, err
		}
		if !exists(p) {
			stale = append(stale, p)
		}
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return 0, err
	}
	for _, p := range stale {
		if err := l.exec(ctx, "DELETE FROM hash_cache WHERE path = ?", p); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
	}
	return len(stale), nil
}
