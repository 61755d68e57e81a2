// Package classify turns scanned file descriptors into decisions.
//
// A classification evaluates an ordered list of rules against one
// descriptor and returns the decision of the first rule that matches.
// Files no rule claims are skipped with the reason "no rule matched".
//
// Three rule kinds exist:
//   - VendorKeywordRule assigns a file to a group folder when any keyword
//     appears in its name, compared without regard to case
//   - DuplicateSuffixRule recognises copies such as "report(1).pdf" whose
//     original still exists next to them
//   - ExtensionFilterRule selects files for bulk renaming by suffix
//
// Rules never mutate the filesystem. The duplicate rule is the only one that
// reads it, to confirm the original sibling exists (and, optionally, that it
// has the same content).
package classify
