package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

var signatures = map[string][]byte{
	"png":  []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
	"jpeg": []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"),
	"webp": []byte("RIFF\x24\x00\x00\x00WEBPVP8 "),
}

// ImageBytes returns a payload that MIME sniffers classify as format
// ("png", "jpeg" or "webp"). Different seeds give different content hashes.
func ImageBytes(format, seed string) []byte {
	sig, ok := signatures[format]
	if !ok {
		return []byte(seed)
	}
	out := make([]byte, 0, len(sig)+len(seed))
	out = append(out, sig...)
	return append(out, seed...)
}

// WriteImage writes ImageBytes(format, seed) to path, creating parents.
func WriteImage(t testing.TB, path, format, seed string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, ImageBytes(format, seed), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
