package world

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"worldmanager/internal/jsontree"
)

// FileKind distinguishes single-document .json files from line-delimited .db
// files.
type FileKind int

const (
	KindJSON FileKind = iota
	KindDB
)

func (k FileKind) String() string {
	if k == KindDB {
		return "db"
	}
	return "json"
}

const maxRecordLine = 64 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// File is one parsed record file. Path is relative to the data root and
// slash separated.
type File struct {
	Path     string
	DiskPath string
	Kind     FileKind
	Docs     []*jsontree.Value
	mode     os.FileMode
}

// Doc returns the document at index. JSON files have exactly one.
func (f *File) Doc(index int) (*jsontree.Value, bool) {
	if index < 0 || index >= len(f.Docs) {
		return nil, false
	}
	return f.Docs[index], true
}

// discoverFiles lists record files under the world root: .json first, then
// .db, each in lexical order. The trash folder and the settings file are
// skipped.
func (l *Layout) discoverFiles(settingsFile string) ([]string, []string, error) {
	skip := ""
	if strings.TrimSpace(settingsFile) != "" {
		skip = filepath.Join(l.worldRoot, filepath.FromSlash(settingsFile))
	}
	var jsonFiles, dbFiles []string
	err := filepath.WalkDir(l.worldRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != l.worldRoot && d.Name() == TrashDirName && filepath.Dir(p) == l.worldRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || p == skip {
			return nil
		}
		switch filepath.Ext(p) {
		case ".json":
			jsonFiles = append(jsonFiles, p)
		case ".db":
			dbFiles = append(dbFiles, p)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk world folder: %w", err)
	}
	slices.Sort(jsonFiles)
	slices.Sort(dbFiles)
	return jsonFiles, dbFiles, nil
}

func (l *Layout) loadFile(diskPath string, kind FileKind) (*File, error) {
	info, err := os.Stat(diskPath)
	if err != nil {
		return nil, fmt.Errorf("stat record file: %w", err)
	}
	ref, ok := l.RefPath(diskPath)
	if !ok {
		return nil, fmt.Errorf("record file %s is outside the data folder", diskPath)
	}
	f := &File{Path: ref, DiskPath: diskPath, Kind: kind, mode: info.Mode().Perm()}

	data, err := os.ReadFile(diskPath)
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if kind == KindJSON {
		doc, err := jsontree.Parse(data)
		if err != nil {
			return nil, &ParseError{File: ref, Err: err}
		}
		f.Docs = []*jsontree.Value{doc}
		return f, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordLine)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		doc, err := jsontree.Parse(raw)
		if err != nil {
			return nil, &ParseError{File: ref, Line: line, Err: err}
		}
		f.Docs = append(f.Docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{File: ref, Line: line + 1, Err: err}
	}
	return f, nil
}
