package worldrun

import (
	"log/slog"

	"worldmanager/internal/config"
	"worldmanager/internal/logging"
	"worldmanager/internal/world"
)

func layoutFor(cfg *config.Config) (*world.Layout, error) {
	return world.NewLayout(cfg.Paths.UserDataDir, cfg.Paths.WorldDir, cfg.Paths.CoreDataDir)
}

// PurgeTrash deletes the world's _trash folder when confirmed.
func PurgeTrash(cfg *config.Config, confirmed bool, logger *slog.Logger) (bool, error) {
	layout, err := layoutFor(cfg)
	if err != nil {
		return false, err
	}
	lock, err := acquireLock(cfg)
	if err != nil {
		return false, err
	}
	defer func() { _ = lock.Unlock() }()
	return layout.PurgeTrash(confirmed, logging.NewComponentLogger(logger, "worldrun"))
}

// RestoreTrash moves the content of _trash back into the world folder.
func RestoreTrash(cfg *config.Config, logger *slog.Logger) (world.TrashResult, error) {
	layout, err := layoutFor(cfg)
	if err != nil {
		return world.TrashResult{}, err
	}
	lock, err := acquireLock(cfg)
	if err != nil {
		return world.TrashResult{}, err
	}
	defer func() { _ = lock.Unlock() }()
	return layout.RestoreTrash(logging.NewComponentLogger(logger, "worldrun"))
}

// RestoreBackups puts every record backup of the world back in place.
func RestoreBackups(cfg *config.Config, logger *slog.Logger) ([]string, error) {
	layout, err := layoutFor(cfg)
	if err != nil {
		return nil, err
	}
	lock, err := acquireLock(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()
	return layout.RestoreBackups(logging.NewComponentLogger(logger, "worldrun"))
}
