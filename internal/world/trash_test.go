package world_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"worldmanager/internal/testsupport"
	"worldmanager/internal/world"
)

func TestCommitTrashMirrorsWorldPaths(t *testing.T) {
	w := testsupport.NewWorld(t)
	moved := w.Image(w.Ref("art/old.png"), "png", "o")
	core := w.CoreImage("icons/x.png", "png", "x")
	outside := w.Image("modules/pack/x.png", "png", "m")
	w.WriteJSON("data.json", `{}`)

	store := openWorld(t, w)
	store.QueueTrash(moved)
	store.QueueTrash(moved)
	store.QueueTrash(core)
	store.QueueTrash(outside)
	store.QueueTrash(filepath.Join(w.WorldRoot(), "art", "missing.png"))

	if got := len(store.TrashQueue()); got != 4 {
		t.Fatalf("queue length = %d, want 4", got)
	}

	result := store.CommitTrash()
	if diff := cmp.Diff([]string{moved}, result.Moved); diff != "" {
		t.Fatalf("moved mismatch (-want +got):\n%s", diff)
	}
	if len(result.Skipped) != 3 || len(result.Errors) != 0 || result.Bytes <= 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if testsupport.Exists(moved) {
		t.Fatal("trashed file still in place")
	}
	if !testsupport.Exists(filepath.Join(store.TrashRoot(), "art", "old.png")) {
		t.Fatal("file not mirrored into trash")
	}
	if !testsupport.Exists(core) || !testsupport.Exists(outside) {
		t.Fatal("files outside the world must not move")
	}
	if store.IsQueued(moved) {
		t.Fatal("moved file still queued")
	}
}

func TestRestoreTrashMergesBackIntoWorld(t *testing.T) {
	w := testsupport.NewWorld(t)
	a := w.Image(w.Ref("art/a.png"), "png", "a")
	b := w.Image(w.Ref("top.png"), "png", "b")
	w.Image(w.Ref("art/keep.png"), "png", "k")
	w.WriteJSON("data.json", `{}`)

	store := openWorld(t, w)
	store.QueueTrash(a)
	store.QueueTrash(b)
	if res := store.CommitTrash(); len(res.Moved) != 2 {
		t.Fatalf("commit: %+v", res)
	}

	result, err := store.RestoreTrash(nil)
	if err != nil {
		t.Fatalf("RestoreTrash: %v", err)
	}
	if len(result.Errors) != 0 || len(result.Skipped) != 0 {
		t.Fatalf("unexpected restore result: %+v", result)
	}
	for _, p := range []string{a, b, w.DataPath(w.Ref("art/keep.png"))} {
		if !testsupport.Exists(p) {
			t.Fatalf("expected %s after restore", p)
		}
	}
	entries, err := os.ReadDir(store.TrashRoot())
	if err != nil {
		t.Fatalf("read trash: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("trash not emptied: %v", entries)
	}
}

func TestRestoreTrashSkipsOccupiedFiles(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("a.png"), "png", "live")
	w.Image(w.Ref("_trash/a.png"), "png", "trashed")

	layout, err := world.NewLayout(w.DataRoot, w.WorldDir, w.CoreRoot)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	result, err := layout.RestoreTrash(nil)
	if err != nil {
		t.Fatalf("RestoreTrash: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(layout.TrashRoot(), "a.png")}, result.Skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestPurgeTrashRequiresConfirmation(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("_trash/a.png"), "png", "a")
	layout, err := world.NewLayout(w.DataRoot, w.WorldDir, w.CoreRoot)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}

	removed, err := layout.PurgeTrash(false, nil)
	if err != nil || removed {
		t.Fatalf("unconfirmed purge: removed=%v err=%v", removed, err)
	}
	if !testsupport.Exists(layout.TrashRoot()) {
		t.Fatal("trash removed without confirmation")
	}

	removed, err = layout.PurgeTrash(true, nil)
	if err != nil || !removed {
		t.Fatalf("confirmed purge: removed=%v err=%v", removed, err)
	}
	if testsupport.Exists(layout.TrashRoot()) {
		t.Fatal("trash still present")
	}

	removed, err = layout.PurgeTrash(true, nil)
	if err != nil || removed {
		t.Fatalf("purge of missing trash: removed=%v err=%v", removed, err)
	}
}

func TestRestoreBackups(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.WriteDB("data/items.db", `{"a": 1}`)
	w.WriteJSON("world.json", `{"b": 2}`)

	store := openWorld(t, w)
	if err := store.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	w.WriteJSON("_trash/data/x.dbbak", "{}")

	restored, err := store.RestoreBackups(nil)
	if err != nil {
		t.Fatalf("RestoreBackups: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("restored %v, want 2 files", restored)
	}
	if got := w.Read("data/items.db"); got != "{\"a\": 1}\n" {
		t.Fatalf("items.db = %q", got)
	}
	if got := w.Read("world.json"); got != `{"b": 2}` {
		t.Fatalf("world.json = %q", got)
	}
	if testsupport.Exists(filepath.Join(w.WorldRoot(), "data", "items.dbbak")) {
		t.Fatal("backup left behind")
	}
}
