package world

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"worldmanager/internal/fileutil"
	"worldmanager/internal/logging"
)

// TrashResult is the outcome of CommitTrash or RestoreTrash.
type TrashResult struct {
	Moved   []string
	Skipped []string
	Errors  []PathError
	// Bytes is the total size of the moved files. Only CommitTrash sets it.
	Bytes int64
}

// PathError pairs a path with the error that stopped it from being moved.
type PathError struct {
	Path  string
	Error error
}

// QueueTrash marks an absolute disk path for moving into _trash. Queuing the
// same path twice has no effect.
func (s *Store) QueueTrash(diskPath string) {
	s.trash[filepath.Clean(diskPath)] = struct{}{}
}

// IsQueued reports whether diskPath is in the trash queue.
func (s *Store) IsQueued(diskPath string) bool {
	_, ok := s.trash[filepath.Clean(diskPath)]
	return ok
}

// TrashQueue returns the queued paths, sorted.
func (s *Store) TrashQueue() []string {
	out := make([]string, 0, len(s.trash))
	for p := range s.trash {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// CommitTrash moves every queued path that is a regular file under the world
// root into _trash, keeping its world-relative path. Anything else stays
// where it is and is reported as skipped. Moved entries leave the queue.
func (s *Store) CommitTrash() TrashResult {
	var result TrashResult
	for _, p := range s.TrashQueue() {
		target, ok := s.TrashTarget(p)
		if !ok {
			result.Skipped = append(result.Skipped, p)
			s.logger.Debug("trash entry outside world skipped", logging.String(logging.FieldPath, p))
			continue
		}
		info, isFile := regularFile(p)
		if !isFile {
			result.Skipped = append(result.Skipped, p)
			s.logger.Debug("trash entry missing", logging.String(logging.FieldPath, p))
			continue
		}
		if err := fileutil.MoveFile(p, target); err != nil {
			result.Errors = append(result.Errors, PathError{Path: p, Error: err})
			logging.WarnWithContext(s.logger, "failed to move file to trash", "trash_move_failed",
				logging.String(logging.FieldPath, p),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check world folder permissions"),
				logging.String(logging.FieldImpact, "file left in place"),
			)
			continue
		}
		delete(s.trash, p)
		result.Moved = append(result.Moved, p)
		result.Bytes += info.Size()
	}
	s.logger.Info("trash committed",
		logging.Int("moved", len(result.Moved)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("failed", len(result.Errors)),
		logging.Int64("bytes", result.Bytes),
		logging.String(logging.FieldEventType, "trash_commit"),
	)
	return result
}

// PurgeTrash deletes the _trash folder when confirmed is true. It reports
// whether anything was removed.
func (l *Layout) PurgeTrash(confirmed bool, logger *slog.Logger) (bool, error) {
	if !confirmed {
		return false, nil
	}
	root := l.TrashRoot()
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := os.RemoveAll(root); err != nil {
		return false, err
	}
	if logger != nil {
		logger.Info("trash purged",
			logging.String(logging.FieldPath, root),
			logging.String(logging.FieldEventType, "trash_purge"),
		)
	}
	return true, nil
}

// RestoreTrash moves each top-level entry of _trash back into the world
// root. Directories that already exist in the world are merged entry by
// entry; a file whose original location is occupied stays in the trash and
// is reported as skipped.
func (l *Layout) RestoreTrash(logger *slog.Logger) (TrashResult, error) {
	var result TrashResult
	if _, err := os.Stat(l.TrashRoot()); errors.Is(err, fs.ErrNotExist) {
		return result, nil
	}
	if err := restoreInto(l.TrashRoot(), l.worldRoot, &result); err != nil {
		return result, err
	}
	for _, pe := range result.Errors {
		if logger != nil {
			logging.WarnWithContext(logger, "failed to restore trash entry", "trash_restore_failed",
				logging.String(logging.FieldPath, pe.Path),
				logging.Error(pe.Error),
				logging.String(logging.FieldImpact, "entry left in trash"),
			)
		}
	}
	return result, nil
}

func restoreInto(srcDir, dstDir string, result *TrashResult) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		src := filepath.Join(srcDir, entry.Name())
		dst := filepath.Join(dstDir, entry.Name())
		existing, statErr := os.Stat(dst)
		switch {
		case statErr == nil && existing.IsDir() && entry.IsDir():
			if err := restoreInto(src, dst, result); err != nil {
				result.Errors = append(result.Errors, PathError{Path: src, Error: err})
				continue
			}
			_ = os.Remove(src)
		case statErr == nil:
			result.Skipped = append(result.Skipped, src)
		default:
			final, err := fileutil.Move(src, dst)
			if err != nil {
				result.Errors = append(result.Errors, PathError{Path: src, Error: err})
				continue
			}
			result.Moved = append(result.Moved, final)
		}
	}
	return nil
}

// RestoreBackups renames every <file>.dbbak and <file>.jsonbak under the
// world root, outside _trash, back to its original name.
func (l *Layout) RestoreBackups(logger *slog.Logger) ([]string, error) {
	var restored []string
	err := filepath.WalkDir(l.worldRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == l.TrashRoot() {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".db"+BackupSuffix) && !strings.HasSuffix(name, ".json"+BackupSuffix) {
			return nil
		}
		dst := strings.TrimSuffix(p, BackupSuffix)
		if err := os.Rename(p, dst); err != nil {
			return err
		}
		restored = append(restored, dst)
		if logger != nil {
			logger.Debug("backup restored", logging.String(logging.FieldPath, dst))
		}
		return nil
	})
	return restored, err
}
