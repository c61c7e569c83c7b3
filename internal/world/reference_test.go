package world_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"worldmanager/internal/imageinfo"
	"worldmanager/internal/testsupport"
	"worldmanager/internal/world"
)

func TestResolveFields(t *testing.T) {
	w := testsupport.NewWorld(t)
	disk := w.Image(w.Ref("art/hero.png"), "jpeg", "hero")
	w.Image(w.Ref("art/hero.webp"), "webp", "hero")
	w.WriteJSON("data.json", `{"img":"worlds/testworld/art/hero.png"}`)

	store := openWorld(t, w)
	ref := store.References()[0]
	hash, err := imageinfo.Hash(disk)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	want := world.Resolution{
		Path:             "worlds/testworld/art/hero.png",
		InWorld:          true,
		DiskPath:         disk,
		Exists:           true,
		Encoding:         "jpeg",
		Extension:        imageinfo.ExtensionMismatch,
		Hash:             hash,
		IsNormalized:     false,
		NormalizedPath:   "worlds/testworld/art/hero.webp",
		NormalizedExists: true,
		TrashPath:        filepath.Join(store.TrashRoot(), "art", "hero.png"),
	}
	if diff := cmp.Diff(want, ref.State()); diff != "" {
		t.Fatalf("resolution mismatch (-want +got):\n%s", diff)
	}
	if !ref.WorldLocal() {
		t.Fatal("expected world-local reference")
	}
}

func TestResolveCoreAndMissing(t *testing.T) {
	w := testsupport.NewWorld(t)
	core := w.CoreImage("icons/sword.webp", "webp", "s")
	w.WriteJSON("data.json", `{"a":"icons/sword.webp","b":"worlds/testworld/nope.jpeg","c":"http://example.com/x.png"}`)

	store := openWorld(t, w)
	refs := store.References()

	if got := refs[0].State(); got.DiskPath != core || got.InWorld || got.Hash != "" || got.TrashPath != "" || !got.IsNormalized {
		t.Fatalf("unexpected core resolution: %+v", got)
	}
	if got := refs[1].State(); got.Exists || got.DiskPath != "" || got.Encoding != "" || got.Extension != imageinfo.ExtensionUnknown {
		t.Fatalf("unexpected missing resolution: %+v", got)
	}
	if !refs[2].External() || refs[2].Exists() {
		t.Fatalf("expected external, missing link: %+v", refs[2].State())
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("a.png"), "png", "a")
	w.WriteJSON("data.json", `{"a":"worlds/testworld/a.png","b":"worlds/testworld/missing.png"}`)

	store := openWorld(t, w)
	for _, ref := range store.References() {
		before := ref.State()
		ref.Resolve(ref.Path())
		ref.Resolve(ref.Path())
		if diff := cmp.Diff(before, ref.State()); diff != "" {
			t.Fatalf("resolve changed state for %s (-before +after):\n%s", ref.Path(), diff)
		}
	}
}

func TestRewriteUpdatesContentAndResolution(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("new.webp"), "webp", "n")
	w.WriteDB("data/journal.db",
		`{"content":"<p><img src=\"worlds/testworld/old.png\"><img src=\"worlds/testworld/keep.png\"></p>"}`,
	)

	store := openWorld(t, w)
	ref := store.FindByPath(w.Ref("old.png"))[0]
	id := ref.ID()

	if err := ref.Rewrite(w.Ref("new.webp")); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	content, err := ref.Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	want := `<p><img src="worlds/testworld/new.webp"><img src="worlds/testworld/keep.png"></p>`
	if content != want {
		t.Fatalf("content = %q, want %q", content, want)
	}
	if ref.ID() != id || ref.Path() != w.Ref("new.webp") || !ref.Exists() {
		t.Fatalf("unexpected state after rewrite: %+v", ref.State())
	}

	other := store.FindByPath(w.Ref("keep.png"))[0]
	otherContent, err := other.Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if otherContent != want {
		t.Fatalf("sibling reference sees %q", otherContent)
	}
}

func TestRewriteEscapedSource(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("art/R&D.png"), "png", "r")
	w.WriteJSON("data.json", `{"content":"<p><img src=\"worlds/testworld/art/R&amp;D.png\"></p>"}`)

	store := openWorld(t, w)
	refs := store.FindByPath(w.Ref("art/R&D.png"))
	if len(refs) != 1 {
		t.Fatalf("got %d references want 1", len(refs))
	}
	if err := refs[0].Rewrite(w.Ref("art/R&D.webp")); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	content, err := refs[0].Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if want := `<p><img src="worlds/testworld/art/R&amp;D.webp"></p>`; content != want {
		t.Fatalf("got %q want %q", content, want)
	}
}

func TestRewriteLeavesContainingSiblingAlone(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("a.png"), "png", "a")
	w.WriteJSON("data.json", `{"content":"<img src=\"worlds/testworld/a.png\"><img src=\"https://cdn.example.com/worlds/testworld/a.png\">"}`)

	store := openWorld(t, w)
	if err := store.FindByPath(w.Ref("a.png"))[0].Rewrite(w.Ref("a.webp")); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	external := store.FindByPath("https://cdn.example.com/worlds/testworld/a.png")
	if len(external) != 1 {
		t.Fatalf("got %d external references want 1", len(external))
	}
	content, err := external[0].Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	want := `<img src="worlds/testworld/a.webp"><img src="https://cdn.example.com/worlds/testworld/a.png">`
	if content != want {
		t.Fatalf("got %q want %q", content, want)
	}
}

func TestRewriteMissingPathChangesNothing(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("a.png"), "png", "a")
	w.WriteDB("data/items.db", `{"img":"worlds/testworld/a.png"}`)

	store := openWorld(t, w)
	ref := store.References()[0]
	if err := ref.PushContent("worlds/testworld/moved.png"); err != nil {
		t.Fatalf("PushContent: %v", err)
	}
	before := ref.State()

	err := ref.Rewrite(w.Ref("a.webp"))
	if !errors.Is(err, world.ErrPathNotFound) {
		t.Fatalf("got %v want ErrPathNotFound", err)
	}
	if diff := cmp.Diff(before, ref.State()); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}
	if content, _ := ref.Content(); content != "worlds/testworld/moved.png" {
		t.Fatalf("content changed to %q", content)
	}
}

func TestPushContentOnlyTouchesItsDocument(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.WriteDB("data/items.db",
		`{"img":"worlds/testworld/a.png"}`,
		`{"img":"worlds/testworld/a.png"}`,
	)

	store := openWorld(t, w)
	refs := store.References()
	if err := refs[1].PushContent("worlds/testworld/b.png"); err != nil {
		t.Fatalf("PushContent: %v", err)
	}
	first, _ := refs[0].Content()
	second, _ := refs[1].Content()
	if first != "worlds/testworld/a.png" || second != "worlds/testworld/b.png" {
		t.Fatalf("got %q and %q", first, second)
	}
}

func TestReferenceString(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("a.png"), "png", "a")
	w.WriteDB("data/items.db", `{"name":"x"}`, `{"img":"worlds/testworld/a.png","alt":"worlds/testworld/b.png"}`)
	w.WriteJSON("data.json", `{"list":["`+strings.Repeat("z", 300)+`.png"]}`)

	store := openWorld(t, w)
	refs := store.References()

	long := refs[0].String()
	if !strings.HasPrefix(long, strings.Repeat("z", 300)+".png | 404 IMG NOT FOUND | worlds/testworld/data.json -1 | [\"list\",0] | ") {
		t.Fatalf("unexpected rendering %q", long)
	}
	if !strings.HasSuffix(long, " "+strings.Repeat("z", 255)+" |") {
		t.Fatalf("content not truncated: %q", long)
	}

	got := refs[1].String()
	want := `worlds/testworld/a.png | png | worlds/testworld/data/items.db 1 | ["img"] | worlds/testworld/a.png |`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

type fakeTranscoder struct {
	calls [][2]string
	err   error
}

func (f *fakeTranscoder) Transcode(_ context.Context, src, dst string) error {
	f.calls = append(f.calls, [2]string{src, dst})
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dst, testsupport.ImageBytes("webp", src), 0o644)
}

func TestTranscodeUsesNormalizedSibling(t *testing.T) {
	w := testsupport.NewWorld(t)
	disk := w.Image(w.Ref("art/a.png"), "png", "a")
	w.WriteJSON("data.json", `{"img":"worlds/testworld/art/a.png"}`)

	fake := &fakeTranscoder{}
	store, err := world.Open(world.Options{DataRoot: w.DataRoot, WorldDir: w.WorldDir, CoreRoot: w.CoreRoot, Transcoder: fake})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ref := store.References()[0]
	if err := ref.Transcode(context.Background()); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	want := [][2]string{{disk, w.DataPath(w.Ref("art/a.webp"))}}
	if diff := cmp.Diff(want, fake.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if ref.State().NormalizedExists {
		t.Fatal("Transcode must not re-resolve")
	}

	fake.err = errors.New("boom")
	if err := ref.Transcode(context.Background()); err == nil {
		t.Fatal("expected transcoder error")
	}
}

func TestTranscodeWithoutTranscoderIsConfigurationError(t *testing.T) {
	w := testsupport.NewWorld(t)
	w.Image(w.Ref("a.png"), "png", "a")
	w.WriteJSON("data.json", `{"img":"worlds/testworld/a.png"}`)

	store := openWorld(t, w)
	err := store.References()[0].Transcode(context.Background())
	if !errors.Is(err, world.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
