// Package scaffold creates a new project folder with a fixed set of
// subfolders and a README.
package scaffold

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"tidy/internal/classify"
	"tidy/internal/fault"
	"tidy/internal/fsys"
	"tidy/internal/logging"
	"tidy/internal/report"
	"tidy/internal/scan"
	"tidy/internal/textutil"
)

// ReadmeName is the file written at the project root.
const ReadmeName = "README.md"

// Options control what is created.
type Options struct {
	Subfolders []string
	Readme     bool
	DryRun     bool
}

// Scaffolder creates projects through a filesystem abstraction.
type Scaffolder struct {
	fs     fsys.FS
	logger *slog.Logger
}

func New(filesystem fsys.FS, logger *slog.Logger) *Scaffolder {
	if filesystem == nil {
		filesystem = fsys.OS{}
	}
	return &Scaffolder{fs: filesystem, logger: logging.NewComponentLogger(logger, "scaffold")}
}

// Readme returns the README contents for a project.
func Readme(name string) string {
	return fmt.Sprintf("# %s\nProject Created Successfully.\n", name)
}

// Create makes base/name with its subfolders and README. The project folder
// must not exist yet (fault.ErrCollision) and base must be an existing
// directory. One entry is returned per created path; a failure part way
// through is recorded on its entry and the remaining paths are still
// attempted.
func (s *Scaffolder) Create(ctx context.Context, base, name string, opts Options) ([]report.Entry, error) {
	logger := logging.WithContext(ctx, s.logger)

	clean := textutil.FolderName(name)
	if clean == "" || clean != strings.TrimSpace(name) {
		return nil, fault.Wrap(fault.ErrConfig, "scaffold", "validate name", fmt.Sprintf("%q is not a usable folder name", name), nil)
	}
	for _, sub := range opts.Subfolders {
		if sub == "" || sub == "." || sub == ".." || strings.ContainsAny(sub, `/\`) {
			return nil, fault.Wrap(fault.ErrConfig, "scaffold", "validate subfolder", fmt.Sprintf("%q is not a usable folder name", sub), nil)
		}
	}

	info, err := s.fs.Stat(base)
	if err != nil {
		return nil, fault.Wrap(fault.ErrNotFound, "scaffold", "stat base", base, err)
	}
	if !info.IsDir() {
		return nil, fault.Wrap(fault.ErrConfig, "scaffold", "stat base", base+" is not a directory", nil)
	}
	project := filepath.Join(base, clean)
	exists, err := fsys.Exists(s.fs, project)
	if err != nil {
		return nil, fault.Wrap(fault.ErrAccess, "scaffold", "check project", project, err)
	}
	if exists {
		return nil, fault.Wrap(fault.ErrCollision, "scaffold", "check project", project+" already exists", nil)
	}

	status := report.StatusApplied
	if opts.DryRun {
		status = report.StatusDryRun
	}
	entry := func(path string, size int64, err error) report.Entry {
		e := report.Entry{File: scan.NewDescriptor(path, size), Decision: classify.Create(), Status: status, Target: path, Bytes: size, Err: err}
		if err != nil {
			e.Status = report.StatusFailed
		}
		return e
	}

	var entries []report.Entry
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !opts.DryRun {
		if err := s.fs.MkdirAll(project, 0o755); err != nil {
			return nil, fault.Wrap(fault.ErrAccess, "scaffold", "create project", project, err)
		}
	}
	entries = append(entries, entry(project, 0, nil))

	for _, sub := range opts.Subfolders {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		path := filepath.Join(project, sub)
		var createErr error
		if !opts.DryRun {
			_, createErr = fsys.EnsureDir(s.fs, path)
		}
		entries = append(entries, entry(path, 0, createErr))
	}

	if opts.Readme {
		path := filepath.Join(project, ReadmeName)
		body := Readme(clean)
		var writeErr error
		if !opts.DryRun {
			if err := s.fs.WriteFile(path, []byte(body), 0o644); err != nil {
				writeErr = fault.Wrap(fault.ErrAccess, "scaffold", "write readme", path, err)
			}
		}
		entries = append(entries, entry(path, int64(len(body)), writeErr))
	}

	logger.Info("project scaffolded",
		logging.String("project", project),
		logging.Int("paths", len(entries)),
		logging.Bool("dry_run", opts.DryRun),
	)
	return entries, nil
}
