package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DefaultWorldDir is the world folder used by NewWorld, relative to the data
// root.
const DefaultWorldDir = "worlds/testworld"

// World is an on-disk Foundry layout for tests: a user data folder holding
// one world, plus a separate core asset folder.
type World struct {
	t        testing.TB
	DataRoot string
	WorldDir string
	CoreRoot string
}

// NewWorld creates empty data, world and core folders under t.TempDir().
func NewWorld(t testing.TB) *World {
	t.Helper()

	base := t.TempDir()
	w := &World{
		t:        t,
		DataRoot: filepath.Join(base, "Data"),
		WorldDir: DefaultWorldDir,
		CoreRoot: filepath.Join(base, "core"),
	}
	for _, dir := range []string{w.WorldRoot(), w.CoreRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return w
}

// WorldRoot returns the absolute world folder.
func (w *World) WorldRoot() string {
	return filepath.Join(w.DataRoot, filepath.FromSlash(w.WorldDir))
}

// Ref joins world-relative parts into a reference path, e.g.
// Ref("art/a.png") == "worlds/testworld/art/a.png".
func (w *World) Ref(rel string) string {
	return w.WorldDir + "/" + strings.TrimPrefix(rel, "/")
}

// DataPath maps a reference path onto the data root.
func (w *World) DataPath(ref string) string {
	return filepath.Join(w.DataRoot, filepath.FromSlash(ref))
}

// WriteJSON writes a single-document record file below the world root.
func (w *World) WriteJSON(rel, content string) string {
	w.t.Helper()
	return w.write(filepath.Join(w.WorldRoot(), filepath.FromSlash(rel)), content)
}

// WriteDB writes a line-delimited record file below the world root, one
// document per line.
func (w *World) WriteDB(rel string, lines ...string) string {
	w.t.Helper()
	return w.write(filepath.Join(w.WorldRoot(), filepath.FromSlash(rel)), strings.Join(lines, "\n")+"\n")
}

// Image writes an image at a reference path relative to the data root.
func (w *World) Image(ref, format, seed string) string {
	w.t.Helper()
	p := w.DataPath(ref)
	WriteImage(w.t, p, format, seed)
	return p
}

// CoreImage writes an image at a reference path relative to the core root.
func (w *World) CoreImage(ref, format, seed string) string {
	w.t.Helper()
	p := filepath.Join(w.CoreRoot, filepath.FromSlash(ref))
	WriteImage(w.t, p, format, seed)
	return p
}

// Read returns the content of a file below the world root.
func (w *World) Read(rel string) string {
	w.t.Helper()
	data, err := os.ReadFile(filepath.Join(w.WorldRoot(), filepath.FromSlash(rel)))
	if err != nil {
		w.t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

// Exists reports whether a path exists on disk.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (w *World) write(path, content string) string {
	w.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		w.t.Fatalf("write %s: %v", path, err)
	}
	return path
}
