package world

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"worldmanager/internal/htmlref"
	"worldmanager/internal/imageinfo"
	"worldmanager/internal/jsontree"
	"worldmanager/internal/logging"
)

// Resolution is the filesystem view of a reference path. It is recomputed
// in full by Resolve and never partially updated.
type Resolution struct {
	Path             string
	InWorld          bool
	DiskPath         string
	Exists           bool
	Encoding         string
	Extension        imageinfo.ExtensionState
	Hash             string
	IsNormalized     bool
	NormalizedPath   string
	NormalizedExists bool
	External         bool
	TrashPath        string
}

// Reference is one image path found inside a record document.
type Reference struct {
	id    string
	store *Store
	file  *File
	doc   int
	addr  jsontree.Address
	html  bool

	state Resolution
}

func newReference(store *Store, file *File, doc int, addr jsontree.Address, html bool, ordinal int, path string) *Reference {
	r := &Reference{store: store, file: file, doc: doc, addr: addr, html: html}
	r.id = referenceID(store.Layout, file, r.Line(), addr, html, ordinal)
	r.Resolve(path)
	return r
}

func referenceID(l *Layout, f *File, line int, addr jsontree.Address, html bool, ordinal int) string {
	var b strings.Builder
	b.WriteString(l.worldRoot)
	b.WriteString(l.coreRoot)
	b.WriteString(f.Path)
	b.WriteString(f.Kind.String())
	b.WriteString(strconv.Itoa(line))
	b.WriteString(addr.String())
	if html {
		// Several <img> tags can share one leaf.
		b.WriteString("#")
		b.WriteString(strconv.Itoa(ordinal))
	}
	b.WriteString("img_ref")
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ID is stable for the lifetime of the reference; rewrites keep it.
func (r *Reference) ID() string { return r.id }

// File returns the record file holding the reference.
func (r *Reference) File() *File { return r.file }

// Line returns the document index within a .db file, or -1 for .json files.
func (r *Reference) Line() int {
	if r.file.Kind == KindJSON {
		return -1
	}
	return r.doc
}

// Address returns a copy of the address of the leaf inside its document.
func (r *Reference) Address() jsontree.Address { return append(jsontree.Address(nil), r.addr...) }

// HTML reports whether the leaf holds an HTML fragment.
func (r *Reference) HTML() bool { return r.html }

// State returns a snapshot of the resolved fields.
func (r *Reference) State() Resolution { return r.state }

func (r *Reference) Path() string      { return r.state.Path }
func (r *Reference) DiskPath() string  { return r.state.DiskPath }
func (r *Reference) Exists() bool      { return r.state.Exists }
func (r *Reference) InWorld() bool     { return r.state.InWorld }
func (r *Reference) External() bool    { return r.state.External }
func (r *Reference) Encoding() string  { return r.state.Encoding }
func (r *Reference) Hash() string      { return r.state.Hash }
func (r *Reference) TrashPath() string { return r.state.TrashPath }

// WorldLocal reports whether the path resolved to a file inside the world
// folder of the data root rather than to a core asset.
func (r *Reference) WorldLocal() bool {
	return r.state.InWorld && r.state.Exists && r.state.DiskPath == r.store.Layout.DataPath(r.state.Path)
}

// Resolve points the reference at newPath and recomputes every resolved
// field. It does not touch the record content; see Rewrite.
func (r *Reference) Resolve(newPath string) {
	l := r.store.Layout
	st := Resolution{
		Path:           newPath,
		InWorld:        l.InWorld(newPath),
		External:       strings.Contains(newPath, "http:") || strings.Contains(newPath, "https:"),
		IsNormalized:   imageinfo.IsNormalized(newPath),
		NormalizedPath: imageinfo.NormalizedPath(newPath),
	}

	var info os.FileInfo
	if fi, ok := regularFile(l.DataPath(newPath)); ok {
		st.DiskPath, info = l.DataPath(newPath), fi
	} else if fi, ok := regularFile(l.CorePath(newPath)); ok {
		st.DiskPath, info = l.CorePath(newPath), fi
	}
	st.Exists = st.DiskPath != ""
	if st.Exists {
		st.Encoding = imageinfo.Encoding(st.DiskPath)
	}
	st.Extension = imageinfo.CheckExtension(st.Encoding, newPath)
	_, st.NormalizedExists = regularFile(l.DataPath(st.NormalizedPath))

	if st.InWorld && st.Exists && st.DiskPath == l.DataPath(newPath) {
		st.Hash = r.store.hash(st.DiskPath, info)
		st.TrashPath, _ = l.TrashTarget(st.DiskPath)
	}
	r.state = st
}

func regularFile(p string) (os.FileInfo, bool) {
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	return info, true
}

// Content returns the current string at the reference's address.
func (r *Reference) Content() (string, error) {
	root, err := r.root()
	if err != nil {
		return "", err
	}
	leaf := root
	if len(r.addr) > 0 {
		if leaf, err = jsontree.Get(root, r.addr); err != nil {
			return "", err
		}
	}
	s, ok := leaf.Str()
	if !ok {
		return "", fmt.Errorf("%s %s: value is %s, not a string", r.file.Path, r.addr, leaf.Kind())
	}
	return s, nil
}

// PushContent stores s at the reference's address, inside the document it
// was found in.
func (r *Reference) PushContent(s string) error {
	if len(r.addr) == 0 {
		r.file.Docs[r.doc] = jsontree.NewString(s)
		return nil
	}
	root, err := r.root()
	if err != nil {
		return err
	}
	return jsontree.Set(root, r.addr, jsontree.NewString(s))
}

func (r *Reference) root() (*jsontree.Value, error) {
	doc, ok := r.file.Doc(r.doc)
	if !ok {
		return nil, fmt.Errorf("%s: document %d not loaded", r.file.Path, r.doc)
	}
	return doc, nil
}

// ErrPathNotFound is returned by Rewrite when the record no longer holds the
// reference's path in a form that can be replaced.
var ErrPathNotFound = errors.New("path not found in record")

// Rewritten returns the leaf content with the reference's path replaced by
// newPath, without storing it. For HTML leaves only img src attributes equal
// to the path change; a plain leaf must hold exactly the path.
func (r *Reference) Rewritten(newPath string) (string, error) {
	content, err := r.Content()
	if err != nil {
		return "", fmt.Errorf("rewrite %s: %w", r.state.Path, err)
	}
	if r.html {
		out, n := htmlref.ReplaceSource(content, r.state.Path, newPath)
		if n == 0 {
			return "", fmt.Errorf("rewrite %s in %s %s: %w", r.state.Path, r.file.Path, r.addr, ErrPathNotFound)
		}
		return out, nil
	}
	if r.state.Path == "" || content != r.state.Path {
		return "", fmt.Errorf("rewrite %s in %s %s: %w", r.state.Path, r.file.Path, r.addr, ErrPathNotFound)
	}
	return newPath, nil
}

// Rewrite points the reference at newPath, stores the new leaf and
// re-resolves. On error the record and the reference are unchanged.
func (r *Reference) Rewrite(newPath string) error {
	content, err := r.Rewritten(newPath)
	if err != nil {
		return err
	}
	if err := r.PushContent(content); err != nil {
		return fmt.Errorf("rewrite %s: %w", r.state.Path, err)
	}
	r.Resolve(newPath)
	return nil
}

// Transcode converts the referenced file to its normalized sibling. The
// reference is not re-resolved.
func (r *Reference) Transcode(ctx context.Context) error {
	if r.store.transcoder == nil {
		return Wrap(ErrConfiguration, "transcode", "no transcoder configured", nil)
	}
	if !r.state.Exists {
		return fmt.Errorf("transcode %s: file not found", r.state.Path)
	}
	started := time.Now()
	dst := r.store.Layout.DataPath(r.state.NormalizedPath)
	if err := r.store.transcoder.Transcode(ctx, r.state.DiskPath, dst); err != nil {
		return err
	}
	r.store.logger.Debug("image transcoded",
		logging.String(logging.FieldPath, r.state.Path),
		logging.String("output", r.state.NormalizedPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// String renders the reference on one line:
// path | encoding | file line | address | content |
func (r *Reference) String() string {
	enc := r.state.Encoding
	if !r.state.Exists {
		enc = "404 IMG NOT FOUND"
	} else if enc == "" {
		enc = "unknown"
	}
	content, err := r.Content()
	if err != nil {
		content = "<" + err.Error() + ">"
	}
	if len(content) > 255 {
		content = content[:255]
	}
	return fmt.Sprintf("%s | %s | %s %d | %s | %s |", r.state.Path, enc, r.file.Path, r.Line(), r.addr, content)
}
