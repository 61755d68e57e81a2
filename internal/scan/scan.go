package scan

import (
	"errors"
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"tidy/internal/fault"
	"tidy/internal/fsys"
)

// Descriptor is an immutable snapshot of one file taken at scan time. It goes
// stale if the tree changes while a run is in progress.
type Descriptor struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Ext  string `json:"ext"`
	Dir  string `json:"dir"`
	Size int64  `json:"size"`
}

// NewDescriptor builds a descriptor from an absolute path.
func NewDescriptor(path string, size int64) Descriptor {
	name := filepath.Base(path)
	return Descriptor{
		Path: path,
		Name: name,
		Ext:  filepath.Ext(name),
		Dir:  filepath.Dir(path),
		Size: size,
	}
}

// Options controls a scan.
type Options struct {
	Recursive bool
	// Exclude lists directories that are never descended into.
	Exclude []string
	// FS defaults to fsys.OS.
	FS fsys.FS
}

// Scan validates root and returns an iterator over its regular files. A
// missing root fails with fault.ErrNotFound and a root that is not a
// directory with fault.ErrConfig. Errors yielded by the iterator are
// fault.ErrAccess failures for directories that could not be read; the
// accompanying Descriptor carries only Dir.
func Scan(root string, opts Options) (iter.Seq2[Descriptor, error], error) {
	filesystem := opts.FS
	if filesystem == nil {
		filesystem = osFS
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fault.Wrap(fault.ErrConfig, "scan", "resolve root", root, err)
	}
	info, err := filesystem.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fault.Wrap(fault.ErrNotFound, "scan", "stat root", abs, err)
		}
		return nil, fault.Wrap(fault.ErrAccess, "scan", "stat root", abs, err)
	}
	if !info.IsDir() {
		return nil, fault.Wrap(fault.ErrConfig, "scan", "stat root", abs+" is not a directory", nil)
	}

	w := walker{fs: filesystem, recursive: opts.Recursive, exclude: cleanAll(opts.Exclude)}
	return func(yield func(Descriptor, error) bool) {
		w.walk(abs, yield)
	}, nil
}

var osFS fsys.FS = fsys.OS{}

type walker struct {
	fs        fsys.FS
	recursive bool
	exclude   []string
}

func (w walker) walk(dir string, yield func(Descriptor, error) bool) bool {
	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		return yield(Descriptor{Dir: dir}, fault.Wrap(fault.ErrAccess, "scan", "read directory", dir, err))
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if w.recursive && !w.excluded(path) {
				subdirs = append(subdirs, path)
			}
			continue
		}
		info, ok := w.regularInfo(entry, path)
		if !ok {
			continue
		}
		if !yield(NewDescriptor(path, info.Size()), nil) {
			return false
		}
	}

	for _, sub := range subdirs {
		if !w.walk(sub, yield) {
			return false
		}
	}
	return true
}

// regularInfo resolves symbolic links so a link to a regular file counts as
// a file. Links to directories are never followed.
func (w walker) regularInfo(entry fs.DirEntry, path string) (fs.FileInfo, bool) {
	if entry.Type()&fs.ModeSymlink != 0 {
		info, err := w.fs.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil, false
		}
		return info, true
	}
	if !entry.Type().IsRegular() {
		return nil, false
	}
	info, err := entry.Info()
	if err != nil {
		// Vanished between ReadDir and Info.
		return nil, false
	}
	return info, true
}

func (w walker) excluded(path string) bool {
	return slices.Contains(w.exclude, path)
}

func cleanAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}
	return out
}
