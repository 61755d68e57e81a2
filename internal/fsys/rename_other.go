//go:build !linux

package fsys

func renameNoReplace(oldpath, newpath string) error {
	return renameChecked(oldpath, newpath)
}
