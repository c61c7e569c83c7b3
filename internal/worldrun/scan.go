package worldrun

import (
	"context"
	"errors"
	"log/slog"

	"worldmanager/internal/config"
	"worldmanager/internal/imageinfo"
	"worldmanager/internal/world"
)

// ReferenceInfo describes one reference in a scan report.
type ReferenceInfo struct {
	Path     string `json:"path" yaml:"path"`
	File     string `json:"file" yaml:"file"`
	Line     int    `json:"line" yaml:"line"`
	Address  string `json:"address" yaml:"address"`
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

// DuplicateSet lists paths whose files share one content hash. The first
// path is the one the repair keeps.
type DuplicateSet struct {
	Hash  string   `json:"hash" yaml:"hash"`
	Paths []string `json:"paths" yaml:"paths"`
}

// ExtensionIssue is a world image whose extension disagrees with its content.
type ExtensionIssue struct {
	Path     string `json:"path" yaml:"path"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

// Report is a read-only view of what compress would touch.
type Report struct {
	World           string           `json:"world" yaml:"world"`
	Files           int              `json:"files" yaml:"files"`
	Documents       int              `json:"documents" yaml:"documents"`
	References      int              `json:"references" yaml:"references"`
	Broken          []ReferenceInfo  `json:"broken" yaml:"broken"`
	BrokenImages    int              `json:"broken_images" yaml:"broken_images"`
	Duplicates      []DuplicateSet   `json:"duplicates" yaml:"duplicates"`
	WrongExtensions []ExtensionIssue `json:"wrong_extensions" yaml:"wrong_extensions"`
	NotNormalized   int              `json:"not_normalized" yaml:"not_normalized"`
	Unused          []string         `json:"unused" yaml:"unused"`
}

// Scan loads the world and reports broken references, duplicates, wrong
// extensions and unused images without changing anything.
func Scan(_ context.Context, cfg *config.Config, logger *slog.Logger) (*Report, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	store, err := world.Open(world.Options{
		DataRoot:     cfg.Paths.UserDataDir,
		WorldDir:     cfg.Paths.WorldDir,
		CoreRoot:     cfg.Paths.CoreDataDir,
		SettingsFile: cfg.Repair.SettingsFile,
		Logger:       logger,
		ReadOnly:     true,
	})
	if err != nil {
		return nil, err
	}
	return buildReport(store)
}

func buildReport(store *world.Store) (*Report, error) {
	st := store.Stats()
	report := &Report{
		World:      store.WorldDir(),
		Files:      st.JSONFiles + st.DBFiles,
		Documents:  st.Documents,
		References: st.References,
	}

	brokenPaths := make(map[string]struct{})
	for _, ref := range store.BrokenReferences() {
		report.Broken = append(report.Broken, describe(ref))
		brokenPaths[ref.Path()] = struct{}{}
	}
	report.BrokenImages = len(brokenPaths)

	for _, hg := range store.Duplicates() {
		set := DuplicateSet{Hash: hg.Hash}
		for _, g := range hg.Paths {
			set.Paths = append(set.Paths, g.Path)
		}
		report.Duplicates = append(report.Duplicates, set)
	}

	for _, g := range store.ByPath() {
		rep := g.Representative()
		if !rep.WorldLocal() {
			continue
		}
		st := rep.State()
		if st.Extension == imageinfo.ExtensionMismatch {
			report.WrongExtensions = append(report.WrongExtensions, ExtensionIssue{Path: g.Path, Encoding: st.Encoding})
		}
		if !st.IsNormalized {
			report.NotNormalized++
		}
	}

	unused, err := store.FindUnusedAssets()
	if err != nil {
		return nil, err
	}
	report.Unused = unused
	return report, nil
}

func describe(ref *world.Reference) ReferenceInfo {
	return ReferenceInfo{
		Path:     ref.Path(),
		File:     ref.File().Path,
		Line:     ref.Line(),
		Address:  ref.Address().String(),
		Encoding: ref.Encoding(),
	}
}
