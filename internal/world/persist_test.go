package world_test

import (
	"os"
	"testing"

	"worldmanager/internal/testsupport"
	"worldmanager/internal/world"
)

func TestPersistWritesCompactRecordsWithBackup(t *testing.T) {
	w := testsupport.NewWorld(t)
	original := "{\"img\" : \"worlds/testworld/a.png\", \"n\": 1.50, \"html\": \"<b>&</b>\"}\n\n{\"name\": \"é\"}\n"
	dbPath := w.WriteDB("data/items.db", "{\"img\" : \"worlds/testworld/a.png\", \"n\": 1.50, \"html\": \"<b>&</b>\"}", "", "{\"name\": \"é\"}")
	jsonPath := w.WriteJSON("world.json", "{\n  \"title\": \"T\",\n  \"bg\": \"worlds/testworld/bg.png\"\n}")

	store := openWorld(t, w)
	if err := store.FindByPath(w.Ref("a.png"))[0].Rewrite(w.Ref("a.webp")); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if err := store.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	got := w.Read("data/items.db")
	want := "{\"img\":\"worlds/testworld/a.webp\",\"n\":1.50,\"html\":\"<b>&</b>\"}\n{\"name\":\"é\"}\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got := w.Read("world.json"); got != "{\"title\":\"T\",\"bg\":\"worlds/testworld/bg.png\"}\n" {
		t.Fatalf("unexpected json output %q", got)
	}

	backup, err := os.ReadFile(dbPath + world.BackupSuffix)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != original {
		t.Fatalf("backup = %q, want %q", backup, original)
	}
	if !testsupport.Exists(jsonPath + world.BackupSuffix) {
		t.Fatal("expected json backup")
	}

	// A second write in the same run keeps the pre-run backup.
	if err := store.FindByPath(w.Ref("a.webp"))[0].Rewrite(w.Ref("c.webp")); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if err := store.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	backup, _ = os.ReadFile(dbPath + world.BackupSuffix)
	if string(backup) != original {
		t.Fatalf("backup overwritten: %q", backup)
	}
}

func TestPersistedRecordsReload(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("a.png"), "png", "a")
	w.WriteDB("data/items.db", `{"img":"worlds/testworld/a.png","tags":[],"meta":{}}`)

	store := openWorld(t, w)
	if err := store.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	reloaded := openWorld(t, w)
	if got := paths(reloaded.References()); len(got) != 1 || got[0] != w.Ref("a.png") {
		t.Fatalf("unexpected references after reload: %v", got)
	}
}
