package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"

	"tidy/internal/fault"
)

// unavailableErrors lists syscall errors that indicate the filesystem itself
// went away (unplugged disk, stale network mount).
var unavailableErrors = []error{
	syscall.ENODEV,
	syscall.ENOTCONN,
	syscall.EHOSTDOWN,
	syscall.EHOSTUNREACH,
	syscall.ETIMEDOUT,
	syscall.EIO,
	syscall.ESTALE,
}

func isUnavailable(err error) bool {
	for _, target := range unavailableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// wrapFSError tags a filesystem error with the matching fault marker.
func wrapFSError(operation, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fault.Wrap(fault.ErrNotFound, "organize", operation, path, err)
	case errors.Is(err, fs.ErrExist):
		return fault.Wrap(fault.ErrCollision, "organize", operation, path+" already exists", err)
	case isUnavailable(err):
		return fault.Wrap(fault.ErrAccess, "organize", operation, path+": filesystem unavailable", err)
	default:
		return fault.Wrap(fault.ErrAccess, "organize", operation, path, err)
	}
}

// RenameName builds "<prefix>-<index>-<name>", or "<index>-<name>" when the
// prefix is empty. Index is 1-based.
func RenameName(prefix string, index int, name string) (string, error) {
	if index < 1 {
		return "", fault.Wrap(fault.ErrConfig, "organize", "rename", fmt.Sprintf("index %d is below 1", index), nil)
	}
	if name == "" {
		return "", fault.Wrap(fault.ErrConfig, "organize", "rename", "file name is empty", nil)
	}
	if strings.ContainsAny(prefix, `/\`) {
		return "", fault.Wrap(fault.ErrConfig, "organize", "rename", "prefix contains a path separator", nil)
	}
	if prefix == "" {
		return fmt.Sprintf("%d-%s", index, name), nil
	}
	return fmt.Sprintf("%s-%d-%s", prefix, index, name), nil
}
