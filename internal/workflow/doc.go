// Package workflow runs one tidy command end to end.
//
// A run validates its inputs, takes the run lock for every directory it may
// change, scans the source tree, classifies every file before touching any of
// them, and then applies the decisions one at a time. Every file produces a
// report entry. Problems with single files are recorded on their entry and
// the run continues; structural problems (missing root, bad rule
// configuration, failed preflight, held lock) abort before anything changes.
//
// Cancellation is checked between actions. A cancelled run stops after the
// action in progress and leaves the filesystem as it was at that point; there
// is no rollback.
package workflow
