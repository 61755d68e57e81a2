// Package preflight checks that the directories a run touches exist and are
// accessible before any file is changed.
//
// A failed check aborts the run as a whole. Problems that only affect single
// files deeper in the tree are not detected here; they surface as per-file
// failures in the report.
package preflight
