package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"tidy/internal/fault"
)

// Access selects the permissions a directory check requires.
type Access int

const (
	Read Access = 1 << iota
	Write
)

func (a Access) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	case Read | Write:
		return "read/write"
	default:
		return "none"
	}
}

func (a Access) mode() uint32 {
	mode := uint32(unix.X_OK)
	if a&Read != 0 {
		mode |= unix.R_OK
	}
	if a&Write != 0 {
		mode |= unix.W_OK
	}
	return mode
}

// CheckDirectoryAccess verifies that the directory exists and grants the
// requested access.
func CheckDirectoryAccess(name, path string, access Access) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path), marker: fault.ErrNotFound}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path), marker: fault.ErrConfig}
	}
	if err := unix.Access(path, access.mode()); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s ok)", path, access)}
}

// CheckCreatable verifies that path is either a writable directory or can be
// created: its nearest existing ancestor must be a writable directory.
func CheckCreatable(name, path string) Result {
	current := filepath.Clean(path)
	for {
		info, err := os.Stat(current)
		switch {
		case err == nil && !info.IsDir():
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, current), marker: fault.ErrCollision}
		case err == nil:
			if err := unix.Access(current, Write.mode()); err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not writable: %v)", path, current, err)}
			}
			if current == path {
				return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (write ok)", path)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created under %s)", path, current)}
		case errors.Is(err, unix.ENOTDIR):
			// A file sits somewhere above current; keep walking until it is found.
		case !errors.Is(err, fs.ErrNotExist):
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat %s: %v)", path, current, err)}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path), marker: fault.ErrNotFound}
		}
		current = parent
	}
}
