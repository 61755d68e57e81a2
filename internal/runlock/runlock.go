// Package runlock keeps two tidy processes from working on the same
// directory tree at once. Locks are advisory flock(2) files kept in a lock
// directory outside the trees being organized.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"

	"tidy/internal/fault"
	"tidy/internal/textutil"
)

// Path returns the lock file used for target. The name combines a readable
// token from the directory name with a digest of the absolute path.
func Path(lockDir, target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fault.Wrap(fault.ErrConfig, "lock", "resolve target", target, err)
	}
	sum := sha256.Sum256([]byte(abs))
	name := fmt.Sprintf("%s-%s.lock", textutil.Token(filepath.Base(abs)), hex.EncodeToString(sum[:8]))
	return filepath.Join(lockDir, name), nil
}

// Set is a group of held locks.
type Set struct {
	locks []*flock.Flock
}

// Acquire takes a lock for every target without blocking. When any lock is
// held elsewhere the ones already taken are released and fault.ErrAccess is
// returned.
func Acquire(lockDir string, targets ...string) (*Set, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fault.Wrap(fault.ErrAccess, "lock", "create lock directory", lockDir, err)
	}

	paths := make([]string, 0, len(targets))
	owners := make(map[string]string, len(targets))
	for _, target := range targets {
		path, err := Path(lockDir, target)
		if err != nil {
			return nil, err
		}
		if _, dup := owners[path]; dup {
			continue
		}
		owners[path] = target
		paths = append(paths, path)
	}
	slices.Sort(paths)

	set := &Set{}
	for _, path := range paths {
		lock := flock.New(path)
		ok, err := lock.TryLock()
		if err != nil {
			_ = set.Release()
			return nil, fault.Wrap(fault.ErrAccess, "lock", "acquire", path, err)
		}
		if !ok {
			_ = set.Release()
			return nil, fault.Wrap(fault.ErrAccess, "lock", "acquire", "another tidy run is working on "+owners[path], nil)
		}
		set.locks = append(set.locks, lock)
	}
	return set, nil
}

// Paths lists the lock files held.
func (s *Set) Paths() []string {
	out := make([]string, 0, len(s.locks))
	for _, l := range s.locks {
		out = append(out, l.Path())
	}
	return out
}

// Release unlocks every held lock. Lock files are left in place; removing
// them would race with another process opening the same path.
func (s *Set) Release() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, l := range s.locks {
		if err := l.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", l.Path(), err))
		}
	}
	s.locks = nil
	return errors.Join(errs...)
}
