package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"tidy/internal/classify"
	"tidy/internal/fault"
	"tidy/internal/scan"
)

// Status is the outcome of one entry.
type Status string

const (
	StatusApplied Status = "applied"
	StatusDryRun  Status = "dry-run"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Entry is one processed file.
type Entry struct {
	File     scan.Descriptor   `json:"file"`
	Decision classify.Decision `json:"decision"`
	Status   Status            `json:"status"`
	// Target is the destination for moves and renames and the surviving
	// original for deletions.
	Target    string `json:"target,omitempty"`
	Err       error  `json:"-"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Bytes     int64  `json:"bytes,omitempty"`
}

// Report is the ordered record of a run.
type Report struct {
	RunID    string    `json:"run_id"`
	Mode     string    `json:"mode"`
	Root     string    `json:"root"`
	DryRun   bool      `json:"dry_run"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	// Aborted holds the error that stopped the run early, if any.
	Aborted string  `json:"aborted,omitempty"`
	Entries []Entry `json:"entries"`
}

func New(runID, mode, root string, dryRun bool) *Report {
	return &Report{
		RunID:   runID,
		Mode:    mode,
		Root:    root,
		DryRun:  dryRun,
		Started: time.Now(),
		Entries: []Entry{},
	}
}

// Add appends an entry, filling its serialized error fields.
func (r *Report) Add(entry Entry) Entry {
	if entry.Err != nil {
		entry.Error = entry.Err.Error()
		entry.ErrorKind = fault.Kind(entry.Err)
		entry.Status = StatusFailed
	}
	r.Entries = append(r.Entries, entry)
	return entry
}

// Finish stamps the end time and records an abort cause.
func (r *Report) Finish(err error) {
	r.Finished = time.Now()
	if err != nil {
		r.Aborted = err.Error()
	}
}

// HasFailures reports whether any entry failed or the run aborted.
func (r *Report) HasFailures() bool {
	if r.Aborted != "" {
		return true
	}
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Summary counts entries by status.
type Summary struct {
	Applied int `json:"applied"`
	DryRun  int `json:"dry_run"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	// Reclaimed is the size of deleted duplicates; WouldReclaim is the same
	// figure for a dry run.
	Reclaimed    int64 `json:"reclaimed_bytes"`
	WouldReclaim int64 `json:"would_reclaim_bytes"`
}

func (r *Report) Summary() Summary {
	var s Summary
	for _, e := range r.Entries {
		switch e.Status {
		case StatusApplied:
			s.Applied++
			if e.Decision.Kind == classify.KindDuplicate {
				s.Reclaimed += e.Bytes
			}
		case StatusDryRun:
			s.DryRun++
			if e.Decision.Kind == classify.KindDuplicate {
				s.WouldReclaim += e.Bytes
			}
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

func (s Summary) Total() int {
	return s.Applied + s.DryRun + s.Skipped + s.Failed
}

// String renders the summary on one line.
func (s Summary) String() string {
	out := fmt.Sprintf("Summary: %d applied, %d dry-run, %d skipped, %d failed", s.Applied, s.DryRun, s.Skipped, s.Failed)
	if s.Reclaimed > 0 {
		out += ", " + humanize.Bytes(uint64(s.Reclaimed)) + " reclaimed"
	}
	if s.WouldReclaim > 0 {
		out += ", " + humanize.Bytes(uint64(s.WouldReclaim)) + " would be reclaimed"
	}
	return out
}

// Visible reports whether the entry's line is printed. Skips are verbose
// output, except skipped duplicate candidates which always explain why a
// marked file was kept.
func (e Entry) Visible(verbose bool) bool {
	if e.Status != StatusSkipped || verbose {
		return true
	}
	return strings.HasPrefix(e.Decision.Rule, "duplicate:")
}

// Line renders the human-readable line for the entry.
func (e Entry) Line() string {
	path := e.File.Path
	if e.Status == StatusFailed {
		return fmt.Sprintf("Failed: %s: %s", path, e.reason())
	}
	if e.Status == StatusSkipped {
		return fmt.Sprintf("Skipped: %s (%s)", path, e.Decision.Reason)
	}
	dry := e.Status == StatusDryRun
	switch e.Decision.Kind {
	case classify.KindAssign:
		if dry {
			return fmt.Sprintf("(Dry-run) would move %s -> %s/", e.File.Name, e.Decision.Group)
		}
		return fmt.Sprintf("Moved %s -> %s/", e.File.Name, e.Decision.Group)
	case classify.KindDuplicate:
		if dry {
			return "(Dry-run) would delete: " + path
		}
		return "Deleted: " + path
	case classify.KindRename:
		newName := filepath.Base(e.Target)
		if dry {
			return fmt.Sprintf("(Dry-run) would rename %s -> %s", e.File.Name, newName)
		}
		return fmt.Sprintf("Renamed %s -> %s", e.File.Name, newName)
	case classify.KindCreate:
		if dry {
			return "(Dry-run) would create: " + path
		}
		return "Created: " + path
	default:
		return fmt.Sprintf("%s: %s", e.Status, path)
	}
}

func (e Entry) reason() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Error != "" {
		return e.Error
	}
	return "unknown error"
}
