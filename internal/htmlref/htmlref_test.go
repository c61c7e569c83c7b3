package htmlref_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"worldmanager/internal/htmlref"
)

func TestHasMarkup(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"bare path", "worlds/w/art/banner.jpg", false},
		{"path with spaces", "worlds/w/my art/banner 1.png", false},
		{"comparison text", "size < 3 and a.png", false},
		{"img tag", `<img src="worlds/w/a.png" />`, true},
		{"paragraph", `<p>See worlds/w/a.png</p>`, true},
		{"text then tag", `Intro <b>bold</b> worlds/w/a.png`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlref.HasMarkup(tt.content); got != tt.want {
				t.Fatalf("HasMarkup(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestImageSourcesDistinctInOrder(t *testing.T) {
	content := `<p><img title="Banner" src="worlds/w/b.png" /></p>` +
		`<div><img src="worlds/w/a.jpg"><img src="worlds/w/b.png"></div>` +
		`<img alt="no source"><img src="https://example.com/x.webp">`

	got := htmlref.ImageSources(content)
	want := []string{"worlds/w/b.png", "worlds/w/a.jpg", "https://example.com/x.webp"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected sources (-want +got):\n%s", diff)
	}
}

func TestImageSourcesWithoutImages(t *testing.T) {
	if got := htmlref.ImageSources(`<p>worlds/w/a.png</p>`); len(got) != 0 {
		t.Fatalf("expected no sources, got %v", got)
	}
}

func TestReplaceSource(t *testing.T) {
	tests := []struct {
		name    string
		content string
		old     string
		new     string
		want    string
		count   int
	}{
		{
			name:    "double quoted",
			content: `<p class="x"><img src="worlds/w/a.png" alt="a.png"></p>`,
			old:     "worlds/w/a.png",
			new:     "worlds/w/a.webp",
			want:    `<p class="x"><img src="worlds/w/a.webp" alt="a.png"></p>`,
			count:   1,
		},
		{
			name:    "escaped ampersand",
			content: `<p><img src="worlds/w/R&amp;D.png"></p>`,
			old:     "worlds/w/R&D.png",
			new:     "worlds/w/R&D.webp",
			want:    `<p><img src="worlds/w/R&amp;D.webp"></p>`,
			count:   1,
		},
		{
			name:    "single quoted and unquoted",
			content: `<img src='worlds/w/a.png'/><IMG SRC=worlds/w/a.png>`,
			old:     "worlds/w/a.png",
			new:     "worlds/w/b.webp",
			want:    `<img src='worlds/w/b.webp'/><IMG SRC="worlds/w/b.webp">`,
			count:   2,
		},
		{
			name:    "sibling containing the path is kept",
			content: `<img src="worlds/w/a.png"><img src="https://cdn.example.com/worlds/w/a.png">`,
			old:     "worlds/w/a.png",
			new:     "worlds/w/a.webp",
			want:    `<img src="worlds/w/a.webp"><img src="https://cdn.example.com/worlds/w/a.png">`,
			count:   1,
		},
		{
			name:    "text and other attributes untouched",
			content: `see worlds/w/a.png <a href="worlds/w/a.png">link</a>`,
			old:     "worlds/w/a.png",
			new:     "worlds/w/a.webp",
			want:    `see worlds/w/a.png <a href="worlds/w/a.png">link</a>`,
			count:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := htmlref.ReplaceSource(tt.content, tt.old, tt.new)
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
			if n != tt.count {
				t.Fatalf("got %d replacements want %d", n, tt.count)
			}
		})
	}
}
