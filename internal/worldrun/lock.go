package worldrun

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"worldmanager/internal/config"
)

// ErrLocked is returned when another worldmanager process holds the lock.
var ErrLocked = errors.New("another worldmanager run is in progress")

func acquireLock(cfg *config.Config) (*flock.Flock, error) {
	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, cfg.LockPath())
	}
	return lock, nil
}
