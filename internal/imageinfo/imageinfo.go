package imageinfo

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// NormalizedExt is the extension every world-local image is converted to.
const NormalizedExt = ".webp"

// imagePattern matches any string mentioning a supported image extension.
var imagePattern = regexp.MustCompile(`\.webp|\.jpg|\.jpeg|\.png`)

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// MentionsImage reports whether s contains an image extension anywhere.
// The match is case-sensitive.
func MentionsImage(s string) bool {
	return imagePattern.MatchString(s)
}

// IsImageFile reports whether name ends in one of the supported image
// extensions. The match is case-sensitive, like a shell glob on Linux.
func IsImageFile(name string) bool {
	_, ok := imageExts[filepath.Ext(name)]
	return ok
}

// ExtensionState is the tri-state result of comparing an encoding with a
// file extension.
type ExtensionState int

const (
	ExtensionUnknown ExtensionState = iota
	ExtensionMatch
	ExtensionMismatch
)

func (s ExtensionState) String() string {
	switch s {
	case ExtensionMatch:
		return "match"
	case ExtensionMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Encoding returns the lower-cased MIME subtype for the file at diskPath, or
// "" when neither the content nor the extension identifies it.
func Encoding(diskPath string) string {
	if detected, err := mimetype.DetectFile(diskPath); err == nil {
		if enc := imageSubtype(detected.String()); enc != "" {
			return enc
		}
	}
	return extensionSubtype(diskPath)
}

func imageSubtype(mediaType string) string {
	mediaType, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return ""
	}
	major, sub, ok := strings.Cut(mediaType, "/")
	if !ok || major != "image" {
		return ""
	}
	return strings.ToLower(sub)
}

func extensionSubtype(p string) string {
	typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
	if typ == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(typ)
	if err != nil {
		return ""
	}
	_, sub, ok := strings.Cut(mediaType, "/")
	if !ok {
		return ""
	}
	return strings.ToLower(sub)
}

// CheckExtension compares encoding with the extension of p. JPEG data is
// accepted under both .jpg and .jpeg.
func CheckExtension(encoding, p string) ExtensionState {
	if encoding == "" {
		return ExtensionUnknown
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filepath.ToSlash(p)), "."))
	encoding = strings.ToLower(encoding)
	if encoding == "jpeg" {
		if ext == "jpg" || ext == "jpeg" {
			return ExtensionMatch
		}
		return ExtensionMismatch
	}
	if ext == encoding {
		return ExtensionMatch
	}
	return ExtensionMismatch
}

// Hash returns the hex md5 digest of the file at diskPath.
func Hash(diskPath string) (string, error) {
	f, err := os.Open(diskPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", diskPath, err)
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", diskPath, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsNormalized reports whether the reference path already carries the
// normalized extension (case-insensitive).
func IsNormalized(ref string) bool {
	return strings.EqualFold(path.Ext(ref), NormalizedExt)
}

// NormalizedPath returns ref with its extension replaced by the normalized
// one, keeping the directory. Reference paths are slash separated.
func NormalizedPath(ref string) string {
	return WithExtension(ref, NormalizedExt)
}

// WithExtension replaces the extension of a slash-separated path. ext may be
// given with or without the leading dot.
func WithExtension(ref, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(ref, path.Ext(ref)) + ext
}
