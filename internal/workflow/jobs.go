package workflow

import (
	"context"
	"path/filepath"
	"strings"

	"tidy/internal/classify"
	"tidy/internal/fault"
	"tidy/internal/organizer"
	"tidy/internal/preflight"
	"tidy/internal/report"
	"tidy/internal/rules"
	"tidy/internal/scaffold"
	"tidy/internal/scan"
)

// SortRequest moves files into vendor group folders under Dest.
type SortRequest struct {
	Source    string
	Dest      string
	Vendors   []string
	RulesFile string
	Recursive bool
	DryRun    bool
}

// DedupeRequest deletes marker-suffixed copies whose original is present.
type DedupeRequest struct {
	Source        string
	Marker        string
	Recursive     bool
	VerifyContent bool
	DryRun        bool
}

// RenameRequest renames files with an extension to <prefix>-<index>-<name>.
type RenameRequest struct {
	Source    string
	Extension string
	Prefix    string
	Recursive bool
	DryRun    bool
}

// ScaffoldRequest creates a project folder under Base.
type ScaffoldRequest struct {
	Base       string
	Name       string
	Subfolders []string
	Readme     bool
	DryRun     bool
}

func absPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fault.Wrap(fault.ErrConfig, "workflow", "resolve path", "path is required", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fault.Wrap(fault.ErrConfig, "workflow", "resolve path", path, err)
	}
	return abs, nil
}

// sourceAccess is read-only for dry runs.
func sourceAccess(dryRun bool) preflight.Access {
	if dryRun {
		return preflight.Read
	}
	return preflight.Read | preflight.Write
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Sort runs vendor sorting.
func (r *Runner) Sort(ctx context.Context, req SortRequest) (*report.Report, error) {
	source, err := absPath(req.Source)
	if err != nil {
		return nil, err
	}
	dest, err := absPath(req.Dest)
	if err != nil {
		return nil, err
	}
	ruleSet, err := rules.Build(req.Vendors, req.RulesFile)
	if err != nil {
		return nil, err
	}

	scanOpts := scan.Options{Recursive: req.Recursive}
	if within(dest, source) {
		if dest == source {
			return nil, fault.Wrap(fault.ErrConfig, "workflow", "sort", "destination must differ from the source directory", nil)
		}
		scanOpts.Exclude = []string{dest}
	}

	return r.run(ctx, job{
		mode:   ModeSort,
		root:   source,
		dryRun: req.DryRun,
		locks:  []string{source, dest},
		checks: func() error {
			results := []preflight.Result{preflight.CheckDirectoryAccess("source", source, sourceAccess(req.DryRun))}
			if !req.DryRun {
				results = append(results, preflight.CheckCreatable("destination", dest))
			}
			return preflight.Errors(results)
		},
		execute: func(ctx context.Context, rep *report.Report) error {
			plan, err := r.classifyTree(ctx, rep, source, scanOpts, ruleSet)
			if err != nil {
				return err
			}
			return r.apply(ctx, rep, plan, organizer.Options{DryRun: req.DryRun, DestRoot: dest})
		},
	})
}

// Dedupe runs duplicate deletion.
func (r *Runner) Dedupe(ctx context.Context, req DedupeRequest) (*report.Report, error) {
	source, err := absPath(req.Source)
	if err != nil {
		return nil, err
	}
	marker := req.Marker
	if marker == "" {
		marker = classify.DefaultMarker
	}
	rule, err := classify.NewDuplicateSuffixRule(marker,
		classify.WithFS(r.fs),
		classify.WithContentCheck(req.VerifyContent),
	)
	if err != nil {
		return nil, err
	}

	return r.run(ctx, job{
		mode:   ModeDedupe,
		root:   source,
		dryRun: req.DryRun,
		locks:  []string{source},
		checks: func() error {
			return preflight.CheckDirectoryAccess("source", source, sourceAccess(req.DryRun)).Err()
		},
		execute: func(ctx context.Context, rep *report.Report) error {
			plan, err := r.classifyTree(ctx, rep, source, scan.Options{Recursive: req.Recursive}, []classify.Rule{rule})
			if err != nil {
				return err
			}
			return r.apply(ctx, rep, plan, organizer.Options{DryRun: req.DryRun})
		},
	})
}

// Rename runs bulk renaming. Indices start at 1 in every directory and
// follow the name order of the matching files.
func (r *Runner) Rename(ctx context.Context, req RenameRequest) (*report.Report, error) {
	source, err := absPath(req.Source)
	if err != nil {
		return nil, err
	}
	rule, err := classify.NewExtensionFilterRule(req.Extension)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(req.Prefix, `/\`) {
		return nil, fault.Wrap(fault.ErrConfig, "workflow", "rename", "prefix must not contain a path separator", nil)
	}

	return r.run(ctx, job{
		mode:   ModeRename,
		root:   source,
		dryRun: req.DryRun,
		locks:  []string{source},
		checks: func() error {
			return preflight.CheckDirectoryAccess("source", source, sourceAccess(req.DryRun)).Err()
		},
		execute: func(ctx context.Context, rep *report.Report) error {
			plan, err := r.classifyTree(ctx, rep, source, scan.Options{Recursive: req.Recursive}, []classify.Rule{rule})
			if err != nil {
				return err
			}
			indexRenames(plan, req.Prefix)
			return r.apply(ctx, rep, plan, organizer.Options{DryRun: req.DryRun})
		},
	})
}

// indexRenames numbers rename decisions per directory in plan order.
func indexRenames(plan []planned, prefix string) {
	next := make(map[string]int)
	for i := range plan {
		if plan[i].decision.Kind != classify.KindRename {
			continue
		}
		dir := plan[i].desc.Dir
		next[dir]++
		plan[i].opts.Prefix = prefix
		plan[i].opts.Index = next[dir]
	}
}

// Scaffold creates a new project folder.
func (r *Runner) Scaffold(ctx context.Context, req ScaffoldRequest) (*report.Report, error) {
	base, err := absPath(req.Base)
	if err != nil {
		return nil, err
	}

	return r.run(ctx, job{
		mode:   ModeScaffold,
		root:   base,
		dryRun: req.DryRun,
		locks:  []string{base},
		checks: func() error {
			return preflight.CheckDirectoryAccess("base", base, sourceAccess(req.DryRun)).Err()
		},
		execute: func(ctx context.Context, rep *report.Report) error {
			entries, err := r.scaffolder.Create(ctx, base, req.Name, scaffold.Options{
				Subfolders: req.Subfolders,
				Readme:     req.Readme,
				DryRun:     req.DryRun,
			})
			for _, e := range entries {
				r.record(rep, e)
			}
			return err
		},
	})
}
