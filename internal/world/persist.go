package world

import (
	"bytes"
	"fmt"

	"worldmanager/internal/fileutil"
	"worldmanager/internal/jsontree"
	"worldmanager/internal/logging"
)

// BackupSuffix is appended to a record file name for its backup copy.
const BackupSuffix = "bak"

// Persist writes every loaded record file back to disk in compact form. The
// first write of each file in the store's lifetime is preceded by a copy to
// <file>bak, so the backup always holds the state from before this run.
func (s *Store) Persist() error {
	for _, f := range s.files {
		data, err := encodeFile(f)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.Path, err)
		}
		if !s.backed[f.DiskPath] {
			if err := fileutil.CopyFileVerified(f.DiskPath, f.DiskPath+BackupSuffix); err != nil {
				return fmt.Errorf("back up %s: %w", f.Path, err)
			}
			s.backed[f.DiskPath] = true
		}
		if err := fileutil.WriteFileAtomic(f.DiskPath, data, f.mode); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	s.logger.Info("records written", logging.Int("files", len(s.files)))
	return nil
}

func encodeFile(f *File) ([]byte, error) {
	var buf bytes.Buffer
	for _, doc := range f.Docs {
		line, err := jsontree.Marshal(doc)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
