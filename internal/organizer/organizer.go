package organizer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tidy/internal/classify"
	"tidy/internal/fault"
	"tidy/internal/fsys"
	"tidy/internal/logging"
	"tidy/internal/report"
	"tidy/internal/scan"
)

// Options parameterize one Apply call.
type Options struct {
	DryRun bool
	// DestRoot receives group folders for assign decisions.
	DestRoot string
	// Prefix and Index derive the new name for rename decisions that do not
	// carry one.
	Prefix string
	Index  int
}

// Outcome is the result of applying one decision.
type Outcome struct {
	Status report.Status
	Target string
	// Bytes is the size of the file acted on.
	Bytes int64
	// CreatedDir is set when a group folder was created for this move.
	CreatedDir string
	Err        error
}

func failed(err error) Outcome {
	return Outcome{Status: report.StatusFailed, Err: err}
}

// Organizer applies decisions through a filesystem abstraction.
type Organizer struct {
	fs     fsys.FS
	logger *slog.Logger
}

// New constructs an organizer. A nil filesystem uses the host filesystem.
func New(filesystem fsys.FS, logger *slog.Logger) *Organizer {
	if filesystem == nil {
		filesystem = fsys.OS{}
	}
	return &Organizer{fs: filesystem, logger: logging.NewComponentLogger(logger, "organizer")}
}

// Apply performs the action for decision. It never panics on per-file
// problems; they come back in Outcome.Err with Status failed.
func (o *Organizer) Apply(ctx context.Context, desc scan.Descriptor, decision classify.Decision, opts Options) Outcome {
	logger := logging.WithContext(ctx, o.logger).With(logging.String("file", desc.Path))
	if err := ctx.Err(); err != nil {
		return failed(err)
	}

	var out Outcome
	switch decision.Kind {
	case classify.KindSkip:
		return Outcome{Status: report.StatusSkipped}
	case classify.KindAssign:
		out = o.assign(desc, decision.Group, opts)
	case classify.KindDuplicate:
		out = o.deleteDuplicate(desc, decision.OriginalPath, opts)
	case classify.KindRename:
		out = o.rename(desc, decision.NewName, opts)
	default:
		out = failed(fault.Wrap(fault.ErrConfig, "organize", "apply", "unsupported decision "+decision.Kind.String(), nil))
	}

	switch out.Status {
	case report.StatusFailed:
		logging.WarnWithContext(logger, "action failed", "organize_failed",
			logging.String("decision", decision.String()),
			logging.Error(out.Err),
			logging.String(logging.FieldErrorHint, "resolve the conflict and re-run"),
			logging.String(logging.FieldImpact, "file left unchanged"),
		)
	case report.StatusDryRun:
		logger.Debug("dry-run action", logging.String("decision", decision.String()), logging.String("target", out.Target))
	default:
		logger.Info("action applied",
			logging.String("decision", decision.String()),
			logging.String("target", out.Target),
			logging.Int64("size_bytes", out.Bytes),
		)
	}
	return out
}

func (o *Organizer) assign(desc scan.Descriptor, group string, opts Options) Outcome {
	if strings.TrimSpace(opts.DestRoot) == "" {
		return failed(fault.Wrap(fault.ErrConfig, "organize", "move", "destination is not set", nil))
	}
	if group == "" || strings.ContainsAny(group, `/\`) || group == "." || group == ".." {
		return failed(fault.Wrap(fault.ErrConfig, "organize", "move", "invalid group "+group, nil))
	}
	dir := filepath.Join(opts.DestRoot, group)
	target := filepath.Join(dir, desc.Name)

	if info, err := o.fs.Stat(dir); err == nil && !info.IsDir() {
		return failed(fault.Wrap(fault.ErrCollision, "organize", "move", dir+" exists and is not a directory", nil))
	}
	if err := o.checkFree(target); err != nil {
		return failed(err)
	}
	if opts.DryRun {
		return Outcome{Status: report.StatusDryRun, Target: target, Bytes: desc.Size}
	}

	created, err := fsys.EnsureDir(o.fs, dir)
	if err != nil {
		return failed(err)
	}
	out := Outcome{Target: target, Bytes: desc.Size}
	if created {
		out.CreatedDir = dir
	}
	if err := o.fs.Rename(desc.Path, target); err != nil {
		out.Status = report.StatusFailed
		out.Err = wrapFSError("move", desc.Path+" -> "+target, err)
		return out
	}
	out.Status = report.StatusApplied
	return out
}

func (o *Organizer) deleteDuplicate(desc scan.Descriptor, original string, opts Options) Outcome {
	if original == "" || filepath.Clean(original) == filepath.Clean(desc.Path) {
		return failed(fault.Wrap(fault.ErrConfig, "organize", "delete duplicate", "original must differ from duplicate", nil))
	}
	self, err := o.fs.Lstat(desc.Path)
	if err != nil {
		return failed(wrapFSError("delete duplicate", desc.Path, err))
	}
	// The original is re-checked at delete time so the last copy of a file is
	// never removed.
	ok, err := fsys.IsRegularFile(o.fs, original)
	if err != nil {
		return failed(wrapFSError("check original", original, err))
	}
	if !ok {
		return failed(fault.Wrap(fault.ErrNotFound, "organize", "check original", original+" no longer exists", nil))
	}
	if self.Mode()&fs.ModeSymlink == 0 {
		origInfo, err := o.fs.Stat(original)
		if err != nil {
			return failed(wrapFSError("check original", original, err))
		}
		if os.SameFile(self, origInfo) {
			return failed(fault.Wrap(fault.ErrNotFound, "organize", "check original", original+" resolves to the duplicate itself", nil))
		}
	}

	if opts.DryRun {
		return Outcome{Status: report.StatusDryRun, Target: original, Bytes: desc.Size}
	}
	if err := o.fs.Remove(desc.Path); err != nil {
		return failed(wrapFSError("delete duplicate", desc.Path, err))
	}
	return Outcome{Status: report.StatusApplied, Target: original, Bytes: desc.Size}
}

func (o *Organizer) rename(desc scan.Descriptor, newName string, opts Options) Outcome {
	if newName == "" {
		name, err := RenameName(opts.Prefix, opts.Index, desc.Name)
		if err != nil {
			return failed(err)
		}
		newName = name
	}
	if strings.ContainsAny(newName, `/\`) {
		return failed(fault.Wrap(fault.ErrConfig, "organize", "rename", "new name contains a path separator", nil))
	}
	target := filepath.Join(desc.Dir, newName)

	if err := o.checkFree(target); err != nil {
		return failed(err)
	}
	if opts.DryRun {
		return Outcome{Status: report.StatusDryRun, Target: target, Bytes: desc.Size}
	}
	if err := o.fs.Rename(desc.Path, target); err != nil {
		return Outcome{Status: report.StatusFailed, Target: target, Err: wrapFSError("rename", desc.Path+" -> "+target, err)}
	}
	return Outcome{Status: report.StatusApplied, Target: target, Bytes: desc.Size}
}

// checkFree fails with ErrCollision when something already occupies target.
func (o *Organizer) checkFree(target string) error {
	exists, err := fsys.Exists(o.fs, target)
	if err != nil {
		return wrapFSError("check target", target, err)
	}
	if exists {
		return fault.Wrap(fault.ErrCollision, "organize", "check target", target+" already exists", nil)
	}
	return nil
}
