package classify

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tidy/internal/fault"
	"tidy/internal/fileutil"
	"tidy/internal/fsys"
	"tidy/internal/scan"
)

// DefaultMarker is the copy marker most file managers append.
const DefaultMarker = "(1)"

// ContentComparer reports whether two files hold identical bytes.
type ContentComparer func(a, b string) (bool, error)

// DuplicateSuffixRule claims files whose name carries the marker. A claimed
// file is a duplicate when the name with the marker removed exists as a
// regular file in the same directory.
type DuplicateSuffixRule struct {
	marker  string
	fs      fsys.FS
	verify  bool
	compare ContentComparer
}

// DuplicateOption customizes a DuplicateSuffixRule.
type DuplicateOption func(*DuplicateSuffixRule)

// WithFS sets the filesystem used for the sibling lookup.
func WithFS(filesystem fsys.FS) DuplicateOption {
	return func(r *DuplicateSuffixRule) {
		if filesystem != nil {
			r.fs = filesystem
		}
	}
}

// WithContentCheck requires the original to have the same size and SHA-256
// digest before a file is called a duplicate.
func WithContentCheck(enabled bool) DuplicateOption {
	return func(r *DuplicateSuffixRule) {
		r.verify = enabled
	}
}

// WithComparer replaces the content comparison used by WithContentCheck.
func WithComparer(compare ContentComparer) DuplicateOption {
	return func(r *DuplicateSuffixRule) {
		if compare != nil {
			r.compare = compare
		}
	}
}

func NewDuplicateSuffixRule(marker string, opts ...DuplicateOption) (*DuplicateSuffixRule, error) {
	if strings.TrimSpace(marker) == "" {
		return nil, fault.Wrap(fault.ErrConfig, "classify", "duplicate rule", "marker is empty", nil)
	}
	if strings.ContainsRune(marker, filepath.Separator) {
		return nil, fault.Wrap(fault.ErrConfig, "classify", "duplicate rule", "marker contains a path separator", nil)
	}
	rule := &DuplicateSuffixRule{
		marker:  marker,
		fs:      fsys.OS{},
		compare: fileutil.SameContent,
	}
	for _, opt := range opts {
		opt(rule)
	}
	return rule, nil
}

func (r *DuplicateSuffixRule) Name() string { return "duplicate:" + r.marker }

// OriginalName removes the last occurrence of marker from name. The boolean
// is false when name does not contain the marker.
func OriginalName(name, marker string) (string, bool) {
	if marker == "" {
		return "", false
	}
	idx := strings.LastIndex(name, marker)
	if idx < 0 {
		return "", false
	}
	return name[:idx] + name[idx+len(marker):], true
}

func (r *DuplicateSuffixRule) Evaluate(desc scan.Descriptor) (Decision, bool) {
	original, ok := OriginalName(desc.Name, r.marker)
	if !ok {
		return Decision{}, false
	}
	if strings.TrimSpace(original) == "" || original == "." || original == ".." {
		return Skip(ReasonNoOriginal), true
	}

	originalPath := filepath.Join(desc.Dir, original)
	info, err := r.fs.Stat(originalPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Skip(ReasonNoOriginal), true
	case err != nil:
		return Skip(ReasonOriginalUnknown), true
	case !info.Mode().IsRegular():
		return Skip(ReasonNoOriginal), true
	}
	// A link between the two names leaves a single copy on disk.
	self, err := r.fs.Lstat(desc.Path)
	if err != nil {
		return Skip(ReasonOriginalUnknown), true
	}
	if os.SameFile(info, self) {
		return Skip(ReasonSameFile), true
	}

	if r.verify {
		if info.Size() != desc.Size {
			return Skip(ReasonContentDiffers), true
		}
		same, err := r.compare(desc.Path, originalPath)
		if err != nil {
			return Skip(ReasonOriginalUnknown), true
		}
		if !same {
			return Skip(ReasonContentDiffers), true
		}
	}
	return DuplicateOf(originalPath), true
}
