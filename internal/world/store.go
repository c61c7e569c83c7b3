package world

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"worldmanager/internal/htmlref"
	"worldmanager/internal/imageinfo"
	"worldmanager/internal/jsontree"
	"worldmanager/internal/logging"
	"worldmanager/internal/transcode"
)

// DefaultSettingsFile is the world-relative record file that is never
// loaded or rewritten.
const DefaultSettingsFile = "data/settings.db"

// HashCache memoizes content hashes keyed by path, size and modification
// time. Implementations must tolerate concurrent misses.
type HashCache interface {
	LookupHash(path string, size int64, modTime time.Time) (string, bool)
	StoreHash(path string, size int64, modTime time.Time, hash string)
}

// Options configures Open.
type Options struct {
	DataRoot string
	WorldDir string
	CoreRoot string
	// SettingsFile is relative to the world root. Empty means
	// DefaultSettingsFile; "-" loads every file.
	SettingsFile string
	HashCache    HashCache
	Transcoder   transcode.Transcoder
	// ReadOnly skips creating the _trash folder.
	ReadOnly bool
	Logger   *slog.Logger
}

// Store holds the loaded records, the references found in them and the
// trash queue of one world.
type Store struct {
	*Layout

	logger     *slog.Logger
	transcoder transcode.Transcoder
	hashCache  HashCache

	files  []*File
	refs   []*Reference
	byID   map[string]*Reference
	trash  map[string]struct{}
	backed map[string]bool
}

// Stats summarizes a loaded store.
type Stats struct {
	JSONFiles  int
	DBFiles    int
	Documents  int
	References int
	Queued     int
}

// Open validates the folders, loads every record file of the world, creates
// the _trash folder and scans the records for image references.
func Open(opts Options) (*Store, error) {
	layout, err := NewLayout(opts.DataRoot, opts.WorldDir, opts.CoreRoot)
	if err != nil {
		return nil, err
	}
	logger := logging.NewComponentLogger(opts.Logger, "world").With(logging.String(logging.FieldWorld, layout.WorldDir()))
	s := &Store{
		Layout:     layout,
		logger:     logger,
		transcoder: opts.Transcoder,
		hashCache:  opts.HashCache,
		byID:       make(map[string]*Reference),
		trash:      make(map[string]struct{}),
		backed:     make(map[string]bool),
	}

	settings := opts.SettingsFile
	switch strings.TrimSpace(settings) {
	case "":
		settings = DefaultSettingsFile
	case "-":
		settings = ""
	}
	if err := s.load(settings); err != nil {
		return nil, err
	}
	if !opts.ReadOnly {
		if err := os.MkdirAll(layout.TrashRoot(), 0o755); err != nil {
			return nil, fmt.Errorf("create trash folder: %w", err)
		}
	}
	s.scan()

	st := s.Stats()
	logger.Info("world loaded",
		logging.Int("json_files", st.JSONFiles),
		logging.Int("db_files", st.DBFiles),
		logging.Int("documents", st.Documents),
		logging.Int("references", st.References),
	)
	return s, nil
}

func (s *Store) load(settingsFile string) error {
	jsonFiles, dbFiles, err := s.Layout.discoverFiles(settingsFile)
	if err != nil {
		return err
	}
	for _, p := range jsonFiles {
		f, err := s.Layout.loadFile(p, KindJSON)
		if err != nil {
			return err
		}
		s.files = append(s.files, f)
	}
	for _, p := range dbFiles {
		f, err := s.Layout.loadFile(p, KindDB)
		if err != nil {
			return err
		}
		s.files = append(s.files, f)
	}
	return nil
}

// scan walks every document in load order and records one reference per
// image path found.
func (s *Store) scan() {
	for _, f := range s.files {
		for doc, root := range f.Docs {
			for addr, leaf := range jsontree.Walk(root) {
				content, ok := leaf.Str()
				if !ok || !imageinfo.MentionsImage(content) {
					continue
				}
				if htmlref.HasMarkup(content) {
					for i, src := range htmlref.ImageSources(content) {
						s.add(newReference(s, f, doc, addr, true, i, src))
					}
					continue
				}
				s.add(newReference(s, f, doc, addr, false, 0, content))
			}
		}
	}
}

func (s *Store) add(r *Reference) {
	if _, dup := s.byID[r.id]; dup {
		s.logger.Debug("duplicate reference id skipped", logging.String(logging.FieldPath, r.state.Path))
		return
	}
	s.refs = append(s.refs, r)
	s.byID[r.id] = r
}

func (s *Store) hash(diskPath string, info os.FileInfo) string {
	if s.hashCache != nil && info != nil {
		if h, ok := s.hashCache.LookupHash(diskPath, info.Size(), info.ModTime()); ok {
			return h
		}
	}
	h, err := imageinfo.Hash(diskPath)
	if err != nil {
		logging.WarnWithContext(s.logger, "image hash failed", "hash_failed",
			logging.String(logging.FieldPath, diskPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check file permissions"),
			logging.String(logging.FieldImpact, "image excluded from duplicate detection"),
		)
		return ""
	}
	if s.hashCache != nil && info != nil {
		s.hashCache.StoreHash(diskPath, info.Size(), info.ModTime(), h)
	}
	return h
}

// Files returns the loaded record files in load order.
func (s *Store) Files() []*File { return s.files }

// References returns every reference in scan order.
func (s *Store) References() []*Reference { return s.refs }

// Lookup returns the reference with the given id.
func (s *Store) Lookup(id string) (*Reference, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// FindByPath returns the references currently pointing at p.
func (s *Store) FindByPath(p string) []*Reference {
	var out []*Reference
	for _, r := range s.refs {
		if r.state.Path == p {
			out = append(out, r)
		}
	}
	return out
}

// Logger returns the store's component logger.
func (s *Store) Logger() *slog.Logger { return s.logger }

// Stats counts files, documents, references and queued trash entries.
func (s *Store) Stats() Stats {
	st := Stats{References: len(s.refs), Queued: len(s.trash)}
	for _, f := range s.files {
		if f.Kind == KindDB {
			st.DBFiles++
		} else {
			st.JSONFiles++
		}
		st.Documents += len(f.Docs)
	}
	return st
}
