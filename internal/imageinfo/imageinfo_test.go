package imageinfo_test

import (
	"os"
	"path/filepath"
	"testing"

	"worldmanager/internal/imageinfo"
	"worldmanager/internal/testsupport"
)

func TestEncodingPrefersContent(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		file   string
		format string
		want   string
	}{
		{"png named jpg", "banner.jpg", "png", "png"},
		{"jpeg named png", "token.png", "jpeg", "jpeg"},
		{"webp", "map.webp", "webp", "webp"},
		{"unknown bytes fall back to extension", "plain.png", "", "png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(dir, tt.file)
			testsupport.WriteImage(t, p, tt.format, "payload")
			if got := imageinfo.Encoding(p); got != tt.want {
				t.Fatalf("Encoding(%s) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestEncodingUnknown(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.zzunknown")
	if err := os.WriteFile(p, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := imageinfo.Encoding(p); got != "" {
		t.Fatalf("expected unknown encoding, got %q", got)
	}
}

func TestCheckExtension(t *testing.T) {
	tests := []struct {
		encoding string
		path     string
		want     imageinfo.ExtensionState
	}{
		{"png", "worlds/w/a.png", imageinfo.ExtensionMatch},
		{"png", "worlds/w/a.PNG", imageinfo.ExtensionMatch},
		{"png", "worlds/w/banner.jpg", imageinfo.ExtensionMismatch},
		{"jpeg", "worlds/w/a.jpg", imageinfo.ExtensionMatch},
		{"jpeg", "worlds/w/a.JPEG", imageinfo.ExtensionMatch},
		{"jpeg", "worlds/w/a.png", imageinfo.ExtensionMismatch},
		{"", "worlds/w/a.png", imageinfo.ExtensionUnknown},
	}
	for _, tt := range tests {
		if got := imageinfo.CheckExtension(tt.encoding, tt.path); got != tt.want {
			t.Fatalf("CheckExtension(%q, %q) = %s, want %s", tt.encoding, tt.path, got, tt.want)
		}
	}
}

func TestHashMatchesForIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "sub", "b.png")
	c := filepath.Join(dir, "c.png")
	testsupport.WriteImage(t, a, "png", "same")
	testsupport.WriteImage(t, b, "png", "same")
	testsupport.WriteImage(t, c, "png", "different")

	ha, err := imageinfo.Hash(a)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	hb, _ := imageinfo.Hash(b)
	hc, _ := imageinfo.Hash(c)
	if ha != hb {
		t.Fatalf("expected identical hashes, got %q and %q", ha, hb)
	}
	if ha == hc {
		t.Fatal("expected different content to hash differently")
	}
	if _, err := imageinfo.Hash(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalizedPaths(t *testing.T) {
	if got := imageinfo.NormalizedPath("worlds/w/art/banner.final.png"); got != "worlds/w/art/banner.final.webp" {
		t.Fatalf("unexpected normalized path %q", got)
	}
	if !imageinfo.IsNormalized("worlds/w/a.WEBP") {
		t.Fatal("expected upper-case webp to count as normalized")
	}
	if imageinfo.IsNormalized("worlds/w/a.png") {
		t.Fatal("png is not normalized")
	}
	if got := imageinfo.WithExtension("worlds/w/banner.jpg", "png"); got != "worlds/w/banner.png" {
		t.Fatalf("unexpected swapped path %q", got)
	}
}

func TestMentionsImageIsCaseSensitive(t *testing.T) {
	if !imageinfo.MentionsImage(`<img src="a.jpeg">`) {
		t.Fatal("expected match")
	}
	if imageinfo.MentionsImage("A.PNG") {
		t.Fatal("upper-case extensions are not matched")
	}
	if !imageinfo.IsImageFile("x.webp") || imageinfo.IsImageFile("x.gif") {
		t.Fatal("unexpected image file classification")
	}
}
