package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tidy/internal/classify"
	"tidy/internal/fsys"
	"tidy/internal/logging"
	"tidy/internal/metrics"
	"tidy/internal/organizer"
	"tidy/internal/report"
	"tidy/internal/runlock"
	"tidy/internal/scaffold"
	"tidy/internal/scan"
)

// Mode names a command.
type Mode string

const (
	ModeSort     Mode = "sort"
	ModeDedupe   Mode = "dedupe"
	ModeRename   Mode = "rename"
	ModeScaffold Mode = "scaffold"
)

// Runner executes commands against the filesystem.
type Runner struct {
	fs          fsys.FS
	logger      *slog.Logger
	lockDir     string
	recorder    *metrics.Recorder
	metricsPath string
	onEntry     func(report.Entry)
	organizer   *organizer.Organizer
	scaffolder  *scaffold.Scaffolder
}

// Option configures a Runner.
type Option func(*Runner)

// WithFS replaces the host filesystem.
func WithFS(filesystem fsys.FS) Option {
	return func(r *Runner) { r.fs = filesystem }
}

// WithLockDir enables run locking with lock files kept in dir.
func WithLockDir(dir string) Option {
	return func(r *Runner) { r.lockDir = dir }
}

// WithMetrics records every finished run and, when path is set, rewrites the
// mode's textfile derived from it afterwards.
func WithMetrics(recorder *metrics.Recorder, path string) Option {
	return func(r *Runner) {
		r.recorder = recorder
		r.metricsPath = path
	}
}

// WithEntryHook is called with each entry as soon as it is recorded.
func WithEntryHook(fn func(report.Entry)) Option {
	return func(r *Runner) { r.onEntry = fn }
}

func New(logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{fs: fsys.OS{}, logger: logging.NewComponentLogger(logger, "workflow")}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = fsys.OS{}
	}
	r.organizer = organizer.New(r.fs, logger)
	r.scaffolder = scaffold.New(r.fs, logger)
	return r
}

// job is the mode-specific part of a run.
type job struct {
	mode   Mode
	root   string
	dryRun bool
	// locks lists directories the run may change.
	locks  []string
	checks func() error
	// execute fills the report. A returned error aborts the run.
	execute func(ctx context.Context, rep *report.Report) error
}

func (r *Runner) run(ctx context.Context, j job) (*report.Report, error) {
	runID, ok := logging.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	ctx = logging.WithMode(ctx, string(j.mode))
	logger := logging.WithContext(ctx, r.logger)

	rep := report.New(runID, string(j.mode), j.root, j.dryRun)
	logger.Info("run started",
		logging.String("root", j.root),
		logging.Bool("dry_run", j.dryRun),
		logging.String(logging.FieldEventType, "run_started"),
	)

	err := r.runLocked(ctx, logger, j, rep)
	rep.Finish(err)
	r.observe(logger, rep)

	summary := rep.Summary()
	attrs := []logging.Attr{
		logging.Int("applied", summary.Applied),
		logging.Int("dry_run", summary.DryRun),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Int64("reclaimed_bytes", summary.Reclaimed),
		logging.Duration("elapsed", rep.Finished.Sub(rep.Started)),
		logging.String(logging.FieldEventType, "run_finished"),
	}
	if err != nil {
		logging.ErrorWithContext(logger, "run aborted", "run_aborted",
			append(attrs,
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the reported problem and re-run"),
			)...,
		)
		return rep, err
	}
	logger.Info("run finished", logging.Args(attrs...)...)
	return rep, nil
}

func (r *Runner) runLocked(ctx context.Context, logger *slog.Logger, j job, rep *report.Report) error {
	if j.checks != nil {
		if err := j.checks(); err != nil {
			return err
		}
	}
	if r.lockDir != "" && len(j.locks) > 0 {
		locks, err := runlock.Acquire(r.lockDir, j.locks...)
		if err != nil {
			return err
		}
		defer func() {
			if err := locks.Release(); err != nil {
				logger.Warn("failed to release run lock", logging.Error(err))
			}
		}()
	}
	return j.execute(ctx, rep)
}

func (r *Runner) observe(logger *slog.Logger, rep *report.Report) {
	if r.recorder == nil {
		return
	}
	r.recorder.Observe(rep)
	if r.metricsPath == "" {
		return
	}
	if path, err := r.recorder.WriteTextfile(r.metricsPath, rep.Mode); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "monitoring shows stale values"),
		)
	}
}

func (r *Runner) record(rep *report.Report, entry report.Entry) {
	entry = rep.Add(entry)
	if r.onEntry != nil {
		r.onEntry(entry)
	}
}

// planned is a classified file waiting to be applied.
type planned struct {
	desc     scan.Descriptor
	decision classify.Decision
	opts     organizer.Options
}

// classifyTree scans root and classifies every file before anything is
// changed. Directories that cannot be read become failed entries right away.
func (r *Runner) classifyTree(ctx context.Context, rep *report.Report, root string, scanOpts scan.Options, rules []classify.Rule) ([]planned, error) {
	logger := logging.WithContext(ctx, r.logger)
	scanOpts.FS = r.fs
	files, err := scan.Scan(root, scanOpts)
	if err != nil {
		return nil, err
	}

	var plan []planned
	for desc, scanErr := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if scanErr != nil {
			r.record(rep, report.Entry{
				File:     scan.NewDescriptor(desc.Dir, 0),
				Decision: classify.Skip("directory could not be read"),
				Err:      scanErr,
			})
			continue
		}
		decision := classify.Classify(desc, rules)
		logger.Debug("file classified",
			logging.Args(append(logging.DecisionAttrs(decision.Kind.String(), decision.String(), decision.Reason),
				logging.String("file", desc.Path),
				logging.String("rule", decision.Rule),
			)...)...,
		)
		plan = append(plan, planned{desc: desc, decision: decision})
	}
	return plan, nil
}

// apply executes the plan in order, stopping early when ctx is cancelled.
func (r *Runner) apply(ctx context.Context, rep *report.Report, plan []planned, base organizer.Options) error {
	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		opts := p.opts
		opts.DryRun = base.DryRun
		if opts.DestRoot == "" {
			opts.DestRoot = base.DestRoot
		}
		out := r.organizer.Apply(ctx, p.desc, p.decision, opts)
		r.record(rep, report.Entry{
			File:     p.desc,
			Decision: p.decision,
			Status:   out.Status,
			Target:   out.Target,
			Bytes:    out.Bytes,
			Err:      out.Err,
		})
	}
	return nil
}
