// Package imageinfo classifies image files on disk: it sniffs their encoding,
// checks that the file extension agrees with it, hashes their content and
// derives the sibling path of the normalized (webp) copy.
//
// Encoding detection prefers the file's bytes and falls back to the MIME type
// registered for the extension. Both paths report the lower-cased MIME
// subtype, e.g. "png", "jpeg" or "webp".
package imageinfo
