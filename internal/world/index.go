package world

import (
	"os"
	"path/filepath"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"worldmanager/internal/imageinfo"
)

// PathGroup is every reference sharing one path, in scan order.
type PathGroup struct {
	Path string
	Refs []*Reference
}

// Representative returns the first reference of the group; all members
// resolve identically.
func (g PathGroup) Representative() *Reference { return g.Refs[0] }

// HashGroup is every path whose file has the same content hash.
type HashGroup struct {
	Hash  string
	Paths []PathGroup
}

// ByPath groups refs by current path, ordered by first appearance.
func ByPath(refs []*Reference) []PathGroup {
	groups := orderedmap.New[string, []*Reference]()
	for _, r := range refs {
		members, _ := groups.Get(r.state.Path)
		groups.Set(r.state.Path, append(members, r))
	}
	out := make([]PathGroup, 0, groups.Len())
	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, PathGroup{Path: pair.Key, Refs: pair.Value})
	}
	return out
}

// ByHashByPath groups refs by hash, then by path. References without a hash
// are left out.
func ByHashByPath(refs []*Reference) []HashGroup {
	byHash := orderedmap.New[string, []*Reference]()
	for _, r := range refs {
		if r.state.Hash == "" {
			continue
		}
		members, _ := byHash.Get(r.state.Hash)
		byHash.Set(r.state.Hash, append(members, r))
	}
	out := make([]HashGroup, 0, byHash.Len())
	for pair := byHash.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, HashGroup{Hash: pair.Key, Paths: ByPath(pair.Value)})
	}
	return out
}

// ByPath groups the store's references by path.
func (s *Store) ByPath() []PathGroup { return ByPath(s.refs) }

// Duplicates returns the hash groups spanning more than one path.
func (s *Store) Duplicates() []HashGroup {
	var out []HashGroup
	for _, g := range ByHashByPath(s.refs) {
		if len(g.Paths) > 1 {
			out = append(out, g)
		}
	}
	return out
}

// BrokenReferences returns references that resolve nowhere (and are not
// external links) or whose file is already queued for trash.
func (s *Store) BrokenReferences() []*Reference {
	var out []*Reference
	for _, r := range s.refs {
		if (!r.state.Exists && !r.state.External) || s.IsQueued(s.DataPath(r.state.Path)) {
			out = append(out, r)
		}
	}
	return out
}

// FindUnusedAssets lists image files under the world root, outside _trash,
// that no reference resolves to. Paths are absolute and sorted.
func (s *Store) FindUnusedAssets() ([]string, error) {
	used := make(map[string]struct{}, len(s.refs))
	for _, r := range s.refs {
		if r.state.DiskPath != "" {
			used[r.state.DiskPath] = struct{}{}
		}
	}
	var unused []string
	err := filepath.WalkDir(s.WorldRoot(), func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == s.TrashRoot() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !imageinfo.IsImageFile(d.Name()) {
			return nil
		}
		if _, ok := used[p]; !ok {
			unused = append(unused, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(unused)
	return unused, nil
}
