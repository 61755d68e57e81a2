package fsys

import (
	"errors"
	"io/fs"
	"os"
	"syscall"

	"tidy/internal/fault"
	"tidy/internal/fileutil"
)

// FS lists the filesystem primitives used by the scanner, classifier, and
// organizer.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error
	// Rename moves oldpath to newpath and must fail with an error matching
	// fs.ErrExist instead of replacing an existing newpath.
	Rename(oldpath, newpath string) error
	Remove(name string) error
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

// OS implements FS on the host filesystem.
type OS struct{}

func (OS) Stat(name string) (fs.FileInfo, error)        { return os.Stat(name) }
func (OS) Lstat(name string) (fs.FileInfo, error)       { return os.Lstat(name) }
func (OS) ReadDir(name string) ([]fs.DirEntry, error)   { return os.ReadDir(name) }
func (OS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (OS) Remove(name string) error                     { return os.Remove(name) }

// WriteFile creates name exclusively; an existing file is never truncated.
func (OS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Rename performs a no-replace rename. When source and target live on
// different filesystems the file is copied with integrity verification and
// the source removed afterwards.
func (OS) Rename(oldpath, newpath string) error {
	err := renameNoReplace(oldpath, newpath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := fileutil.CopyFileVerified(oldpath, newpath); err != nil {
		return err
	}
	return os.Remove(oldpath)
}

// renameChecked is the portable no-replace rename. It is racy between the
// existence check and the rename, which is acceptable for a tool that
// assumes exclusive access to its target directories.
func renameChecked(oldpath, newpath string) error {
	if _, err := os.Lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(oldpath, newpath)
}

// EnsureDir creates path when it is absent and reports whether it did. An
// existing directory is the expected case and is not an error; an existing
// non-directory is a collision.
func EnsureDir(fsys FS, path string) (bool, error) {
	info, err := fsys.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, fault.Wrap(fault.ErrCollision, "fs", "ensure directory", path+" exists and is not a directory", nil)
	case !errors.Is(err, fs.ErrNotExist):
		return false, fault.Wrap(fault.ErrAccess, "fs", "ensure directory", path, err)
	}
	if err := fsys.MkdirAll(path, 0o755); err != nil {
		return false, fault.Wrap(fault.ErrAccess, "fs", "create directory", path, err)
	}
	return true, nil
}

// Exists reports whether anything (file, directory, or dangling link)
// occupies path.
func Exists(fsys FS, path string) (bool, error) {
	_, err := fsys.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsRegularFile reports whether path resolves to a regular file, following
// symbolic links.
func IsRegularFile(fsys FS, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
