package world

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// TrashDirName is the staging folder created inside the world root.
const TrashDirName = "_trash"

// Layout resolves the folders a world lives in. Reference paths are relative
// to DataRoot; the world itself sits at DataRoot/WorldDir.
type Layout struct {
	dataRoot  string
	worldDir  string
	worldRoot string
	coreRoot  string
}

// NewLayout validates the three folders and returns the resolved layout.
// Failures wrap ErrConfiguration.
func NewLayout(dataRoot, worldDir, coreRoot string) (*Layout, error) {
	if strings.TrimSpace(dataRoot) == "" {
		return nil, Wrap(ErrConfiguration, "user data folder", "path is empty", nil)
	}
	absData, err := filepath.Abs(dataRoot)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "user data folder", dataRoot, err)
	}
	if err := requireDir(absData); err != nil {
		return nil, Wrap(ErrConfiguration, "user data folder", absData, err)
	}

	rel := path.Clean(strings.ReplaceAll(strings.TrimSpace(worldDir), `\`, "/"))
	if rel == "." || rel == "" || path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return nil, Wrap(ErrConfiguration, "world folder", fmt.Sprintf("%q must be relative to the user data folder", worldDir), nil)
	}
	worldRoot := filepath.Join(absData, filepath.FromSlash(rel))
	if err := requireDir(worldRoot); err != nil {
		return nil, Wrap(ErrConfiguration, "world folder", worldRoot, err)
	}

	if strings.TrimSpace(coreRoot) == "" {
		return nil, Wrap(ErrConfiguration, "core data folder", "path is empty", nil)
	}
	absCore, err := filepath.Abs(coreRoot)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "core data folder", coreRoot, err)
	}
	if err := requireDir(absCore); err != nil {
		return nil, Wrap(ErrConfiguration, "core data folder", absCore, err)
	}

	return &Layout{dataRoot: absData, worldDir: rel, worldRoot: worldRoot, coreRoot: absCore}, nil
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	return nil
}

// DataRoot returns the absolute user data folder.
func (l *Layout) DataRoot() string { return l.dataRoot }

// WorldDir returns the world folder relative to the data root, slash separated.
func (l *Layout) WorldDir() string { return l.worldDir }

// WorldRoot returns the absolute world folder.
func (l *Layout) WorldRoot() string { return l.worldRoot }

// CoreRoot returns the absolute core asset folder.
func (l *Layout) CoreRoot() string { return l.coreRoot }

// TrashRoot returns the absolute _trash folder of the world.
func (l *Layout) TrashRoot() string { return filepath.Join(l.worldRoot, TrashDirName) }

// DataPath maps a reference path onto the user data folder.
func (l *Layout) DataPath(ref string) string {
	return filepath.Join(l.dataRoot, filepath.FromSlash(ref))
}

// CorePath maps a reference path onto the core asset folder.
func (l *Layout) CorePath(ref string) string {
	return filepath.Join(l.coreRoot, filepath.FromSlash(ref))
}

// RefPath converts an absolute disk path under the data root back into a
// reference path. ok is false for paths outside the data root.
func (l *Layout) RefPath(diskPath string) (string, bool) {
	rel, ok := relUnder(l.dataRoot, diskPath)
	if !ok {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// InWorld reports whether the reference path points into the world folder.
func (l *Layout) InWorld(ref string) bool {
	return ref == l.worldDir || strings.HasPrefix(ref, l.worldDir+"/")
}

// UnderWorld reports whether an absolute disk path lies inside the world
// root, excluding the _trash folder itself.
func (l *Layout) UnderWorld(diskPath string) bool {
	rel, ok := relUnder(l.worldRoot, diskPath)
	if !ok || rel == "." {
		return false
	}
	return !inTrash(rel)
}

// TrashTarget returns where a world-local file is staged when trashed: the
// same world-relative path below the _trash folder.
func (l *Layout) TrashTarget(diskPath string) (string, bool) {
	rel, ok := relUnder(l.worldRoot, diskPath)
	if !ok || rel == "." || inTrash(rel) {
		return "", false
	}
	return filepath.Join(l.TrashRoot(), rel), true
}

func inTrash(rel string) bool {
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first == TrashDirName
}

func relUnder(root, target string) (string, bool) {
	rel, err := filepath.Rel(root, filepath.Clean(target))
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return rel, true
}
