package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"tidy/internal/fault"
	"tidy/internal/logging"
	"tidy/internal/metrics"
	"tidy/internal/report"
	"tidy/internal/runlock"
	"tidy/internal/testsupport"
	"tidy/internal/workflow"
)

func newRunner(t *testing.T, opts ...workflow.Option) *workflow.Runner {
	t.Helper()
	opts = append([]workflow.Option{workflow.WithLockDir(filepath.Join(t.TempDir(), "locks"))}, opts...)
	return workflow.New(logging.NewNop(), opts...)
}

func statuses(rep *report.Report) map[string]report.Status {
	out := make(map[string]report.Status, len(rep.Entries))
	for _, e := range rep.Entries {
		out[e.File.Name] = e.Status
	}
	return out
}

func TestSortMovesIntoGroups(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{
		"Apple_Dell_invoice.pdf": "a",
		"dell-receipt.txt":       "b",
		"notes.txt":              "c",
		"nested/apple-tv.png":    "d",
	})
	dest := filepath.Join(src, "sorted")

	rep, err := newRunner(t).Sort(context.Background(), workflow.SortRequest{
		Source:    src,
		Dest:      dest,
		Vendors:   []string{"Apple", "Dell"},
		Recursive: true,
	})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}

	want := []string{
		"notes.txt",
		"sorted/Apple/Apple_Dell_invoice.pdf",
		"sorted/Apple/apple-tv.png",
		"sorted/Dell/dell-receipt.txt",
	}
	if got := testsupport.ListTree(t, src); !slices.Equal(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
	if rep.HasFailures() {
		t.Fatalf("unexpected failures: %+v", rep.Entries)
	}
	if s := rep.Summary(); s.Applied != 3 || s.Skipped != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSortSecondMoveCollides(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"apple.txt": "new"})
	testsupport.WriteTree(t, dest, map[string]string{"Apple/apple.txt": "old"})

	rep, err := newRunner(t).Sort(context.Background(), workflow.SortRequest{Source: src, Dest: dest, Vendors: []string{"Apple"}})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if len(rep.Entries) != 1 || !errors.Is(rep.Entries[0].Err, fault.ErrCollision) {
		t.Fatalf("expected collision, got %+v", rep.Entries)
	}
	if rep.Entries[0].ErrorKind != "collision" {
		t.Fatalf("unexpected error kind %q", rep.Entries[0].ErrorKind)
	}
	if testsupport.ReadFile(t, filepath.Join(dest, "Apple", "apple.txt")) != "old" {
		t.Fatal("existing file was overwritten")
	}
	if testsupport.ReadFile(t, filepath.Join(src, "apple.txt")) != "new" {
		t.Fatal("source file was moved")
	}
}

func TestSortCollisionDoesNotStopLaterFiles(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"apple-a.txt": "1", "apple-b.txt": "2", "apple-c.txt": "3"})
	testsupport.WriteTree(t, dest, map[string]string{"Apple/apple-b.txt": "old"})

	rep, err := newRunner(t).Sort(context.Background(), workflow.SortRequest{Source: src, Dest: dest, Vendors: []string{"Apple"}})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}

	var got []report.Status
	for _, e := range rep.Entries {
		got = append(got, e.Status)
	}
	want := []report.Status{report.StatusApplied, report.StatusFailed, report.StatusApplied}
	if !slices.Equal(got, want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}
	if !errors.Is(rep.Entries[1].Err, fault.ErrCollision) {
		t.Fatalf("expected collision on the middle file, got %v", rep.Entries[1].Err)
	}
	wantDest := []string{"Apple/apple-a.txt", "Apple/apple-b.txt", "Apple/apple-c.txt"}
	if tree := testsupport.ListTree(t, dest); !slices.Equal(tree, wantDest) {
		t.Fatalf("dest tree = %v, want %v", tree, wantDest)
	}
	if tree := testsupport.ListTree(t, src); !slices.Equal(tree, []string{"apple-b.txt"}) {
		t.Fatalf("source tree = %v", tree)
	}
	if testsupport.ReadFile(t, filepath.Join(dest, "Apple", "apple-b.txt")) != "old" {
		t.Fatal("existing file was overwritten")
	}
}

func TestSortDryRunChangesNothing(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"apple.txt": "x"})
	dest := filepath.Join(t.TempDir(), "out")

	rep, err := newRunner(t).Sort(context.Background(), workflow.SortRequest{Source: src, Dest: dest, Vendors: []string{"apple"}, DryRun: true})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if rep.Entries[0].Status != report.StatusDryRun {
		t.Fatalf("unexpected entry %+v", rep.Entries[0])
	}
	if got := rep.Entries[0].Line(); got != "(Dry-run) would move apple.txt -> apple/" {
		t.Fatalf("unexpected line %q", got)
	}
	if got := testsupport.ListTree(t, src); !slices.Equal(got, []string{"apple.txt"}) {
		t.Fatalf("tree changed: %v", got)
	}
}

func TestSortRulesFile(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"INV-42 acme.pdf": "x", "hp-toner.txt": "y"})
	rulesPath := filepath.Join(t.TempDir(), "rules.yaml")
	testsupport.WriteTree(t, filepath.Dir(rulesPath), map[string]string{
		"rules.yaml": "vendors:\n  - group: Invoices\n    keywords: [inv-, bill]\n  - group: HP\n",
	})
	dest := t.TempDir()

	if _, err := newRunner(t).Sort(context.Background(), workflow.SortRequest{Source: src, Dest: dest, RulesFile: rulesPath}); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := []string{"HP/hp-toner.txt", "Invoices/INV-42 acme.pdf"}
	if got := testsupport.ListTree(t, dest); !slices.Equal(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
}

func TestSortStructuralErrors(t *testing.T) {
	src := t.TempDir()
	tests := []struct {
		name string
		req  workflow.SortRequest
		want error
	}{
		{"no vendors", workflow.SortRequest{Source: src, Dest: t.TempDir()}, fault.ErrConfig},
		{"dest equals source", workflow.SortRequest{Source: src, Dest: src, Vendors: []string{"a"}}, fault.ErrConfig},
		{"missing source", workflow.SortRequest{Source: filepath.Join(src, "nope"), Dest: t.TempDir(), Vendors: []string{"a"}}, fault.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newRunner(t).Sort(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDedupeDeletesDuplicate(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{
		"report.pdf":      "same",
		"report(1).pdf":   "same",
		"orphan(1).txt":   "x",
		"sub/pic(1).jpg":  "p",
		"sub/pic.jpg":     "p",
		"plain-notes.txt": "n",
	})

	var seen []string
	runner := newRunner(t, workflow.WithEntryHook(func(e report.Entry) { seen = append(seen, e.Line()) }))
	rep, err := runner.Dedupe(context.Background(), workflow.DedupeRequest{Source: src, Recursive: true})
	if err != nil {
		t.Fatalf("Dedupe: %v", err)
	}

	want := []string{"orphan(1).txt", "plain-notes.txt", "report.pdf", "sub/pic.jpg"}
	if got := testsupport.ListTree(t, src); !slices.Equal(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
	st := statuses(rep)
	if st["report(1).pdf"] != report.StatusApplied || st["orphan(1).txt"] != report.StatusSkipped {
		t.Fatalf("unexpected statuses %v", st)
	}
	if s := rep.Summary(); s.Reclaimed != 5 {
		t.Fatalf("expected 5 reclaimed bytes, got %d", s.Reclaimed)
	}
	if len(seen) != len(rep.Entries) {
		t.Fatalf("hook saw %d entries, report has %d", len(seen), len(rep.Entries))
	}
	if !slices.Contains(seen, "Deleted: "+filepath.Join(src, "report(1).pdf")) {
		t.Fatalf("missing delete line in %v", seen)
	}
}

func TestDedupeDryRunNeverDeletes(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"a.txt": "1", "a(1).txt": "1"})

	rep, err := newRunner(t).Dedupe(context.Background(), workflow.DedupeRequest{Source: src, DryRun: true})
	if err != nil {
		t.Fatalf("Dedupe: %v", err)
	}
	if got := testsupport.ListTree(t, src); !slices.Equal(got, []string{"a(1).txt", "a.txt"}) {
		t.Fatalf("dry run changed tree: %v", got)
	}
	if s := rep.Summary(); s.DryRun != 1 || s.WouldReclaim != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestDedupeVerifyContent(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"a.txt": "one", "a(1).txt": "two"})

	rep, err := newRunner(t).Dedupe(context.Background(), workflow.DedupeRequest{Source: src, VerifyContent: true})
	if err != nil {
		t.Fatalf("Dedupe: %v", err)
	}
	if st := statuses(rep); st["a(1).txt"] != report.StatusSkipped {
		t.Fatalf("differing content must be skipped, got %v", st)
	}
}

func TestDedupeKeepsCandidateLinkedFromOriginal(t *testing.T) {
	for _, verify := range []bool{false, true} {
		src := t.TempDir()
		testsupport.WriteTree(t, src, map[string]string{"a(1).txt": "only copy"})
		if err := os.Symlink("a(1).txt", filepath.Join(src, "a.txt")); err != nil {
			t.Fatal(err)
		}

		rep, err := newRunner(t).Dedupe(context.Background(), workflow.DedupeRequest{Source: src, VerifyContent: verify})
		if err != nil {
			t.Fatalf("verify=%v: Dedupe: %v", verify, err)
		}
		if st := statuses(rep); st["a(1).txt"] != report.StatusSkipped {
			t.Fatalf("verify=%v: expected skip, got %v", verify, st)
		}
		if testsupport.ReadFile(t, filepath.Join(src, "a(1).txt")) != "only copy" {
			t.Fatalf("verify=%v: last copy was removed", verify)
		}
	}
}

func TestDedupeCustomMarker(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"a.txt": "1", "a - Copy.txt": "1", "b(1).txt": "1", "b.txt": "1"})

	if _, err := newRunner(t).Dedupe(context.Background(), workflow.DedupeRequest{Source: src, Marker: " - Copy"}); err != nil {
		t.Fatalf("Dedupe: %v", err)
	}
	want := []string{"a.txt", "b(1).txt", "b.txt"}
	if got := testsupport.ListTree(t, src); !slices.Equal(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
}

func TestRenameIndexesInNameOrder(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{
		"b.jpg":     "b",
		"a.jpg":     "a",
		"c.JPG":     "c",
		"notes.txt": "n",
		"sub/z.jpg": "z",
	})

	rep, err := newRunner(t).Rename(context.Background(), workflow.RenameRequest{
		Source:    src,
		Extension: ".jpg",
		Prefix:    "holiday",
		Recursive: true,
	})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	want := []string{"c.JPG", "holiday-1-a.jpg", "holiday-2-b.jpg", "notes.txt", "sub/holiday-1-z.jpg"}
	if got := testsupport.ListTree(t, src); !slices.Equal(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
	if s := rep.Summary(); s.Applied != 3 || s.Skipped != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestRenameWithoutPrefix(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"x.png": "x"})

	if _, err := newRunner(t).Rename(context.Background(), workflow.RenameRequest{Source: src, Extension: ".png"}); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got := testsupport.ListTree(t, src); !slices.Equal(got, []string{"1-x.png"}) {
		t.Fatalf("unexpected tree %v", got)
	}
}

func TestRenameCollisionLeavesFile(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"a.jpg": "a", "p-1-a.jpg/keep.txt": "taken"})

	rep, err := newRunner(t).Rename(context.Background(), workflow.RenameRequest{Source: src, Extension: ".jpg", Prefix: "p"})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if !rep.HasFailures() {
		t.Fatal("expected a collision failure")
	}
	if got := testsupport.ListTree(t, src); !slices.Equal(got, []string{"a.jpg", "p-1-a.jpg/keep.txt"}) {
		t.Fatalf("tree changed: %v", got)
	}
}

func TestScaffold(t *testing.T) {
	base := t.TempDir()
	rep, err := newRunner(t).Scaffold(context.Background(), workflow.ScaffoldRequest{
		Base:       base,
		Name:       "Demo",
		Subfolders: []string{"src", "docs"},
		Readme:     true,
	})
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	if len(rep.Entries) != 4 {
		t.Fatalf("unexpected entries %+v", rep.Entries)
	}
	if got := testsupport.ListTree(t, base); !slices.Equal(got, []string{"Demo/README.md"}) {
		t.Fatalf("unexpected tree %v", got)
	}

	rep, err = newRunner(t).Scaffold(context.Background(), workflow.ScaffoldRequest{Base: base, Name: "Demo"})
	if !errors.Is(err, fault.ErrCollision) {
		t.Fatalf("expected collision, got %v", err)
	}
	if rep == nil || rep.Aborted == "" || !rep.HasFailures() {
		t.Fatalf("expected aborted report, got %+v", rep)
	}
}

func TestLockHeldAborts(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"a.txt": "1", "a(1).txt": "1"})
	lockDir := t.TempDir()

	held, err := runlock.Acquire(lockDir, src)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer held.Release()

	runner := workflow.New(logging.NewNop(), workflow.WithLockDir(lockDir))
	if _, err := runner.Dedupe(context.Background(), workflow.DedupeRequest{Source: src}); !errors.Is(err, fault.ErrAccess) {
		t.Fatalf("expected ErrAccess, got %v", err)
	}
	if got := testsupport.ListTree(t, src); len(got) != 2 {
		t.Fatalf("locked run changed files: %v", got)
	}
}

func TestCancelledRunStopsBeforeActions(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"a.txt": "1", "a(1).txt": "1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := newRunner(t).Dedupe(ctx, workflow.DedupeRequest{Source: src})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !strings.Contains(rep.Aborted, "canceled") {
		t.Fatalf("report not marked aborted: %q", rep.Aborted)
	}
	if got := testsupport.ListTree(t, src); len(got) != 2 {
		t.Fatalf("cancelled run changed files: %v", got)
	}
}

func TestRunIDFromContext(t *testing.T) {
	src := t.TempDir()
	ctx := logging.WithRunID(context.Background(), "run-42")
	rep, err := newRunner(t).Dedupe(ctx, workflow.DedupeRequest{Source: src})
	if err != nil {
		t.Fatalf("Dedupe: %v", err)
	}
	if rep.RunID != "run-42" || rep.Mode != "dedupe" {
		t.Fatalf("unexpected report header %+v", rep)
	}

	rep, err = newRunner(t).Dedupe(context.Background(), workflow.DedupeRequest{Source: src})
	if err != nil {
		t.Fatalf("Dedupe: %v", err)
	}
	if rep.RunID == "" {
		t.Fatal("expected generated run id")
	}
}

func TestMetricsTextfilePerMode(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteTree(t, src, map[string]string{"a.txt": "1", "a(1).txt": "1", "apple.txt": "2"})
	base := filepath.Join(t.TempDir(), "tidy.prom")

	runner := newRunner(t, workflow.WithMetrics(metrics.New(), base))
	if _, err := runner.Dedupe(context.Background(), workflow.DedupeRequest{Source: src}); err != nil {
		t.Fatalf("Dedupe: %v", err)
	}
	dedupePath := metrics.ModePath(base, string(workflow.ModeDedupe))
	before := testsupport.ReadFile(t, dedupePath)
	if !strings.Contains(before, `tidy_last_run_files{mode="dedupe",status="applied"} 1`) {
		t.Fatalf("unexpected textfile:\n%s", before)
	}

	// A later run of another mode, even from a fresh process, leaves the
	// dedupe values alone.
	runner = newRunner(t, workflow.WithMetrics(metrics.New(), base))
	if _, err := runner.Sort(context.Background(), workflow.SortRequest{Source: src, Dest: filepath.Join(src, "out"), Vendors: []string{"Apple"}}); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if after := testsupport.ReadFile(t, dedupePath); after != before {
		t.Fatalf("dedupe textfile changed:\n%s", after)
	}
	sortText := testsupport.ReadFile(t, metrics.ModePath(base, string(workflow.ModeSort)))
	if !strings.Contains(sortText, `tidy_last_run_files{mode="sort",status="applied"} 1`) || strings.Contains(sortText, `mode="dedupe"`) {
		t.Fatalf("unexpected sort textfile:\n%s", sortText)
	}
}
