// Package scan enumerates the regular files beneath a root directory.
//
// Scan returns a single-pass iterator so large trees are never materialized
// up front. Ordering is deterministic: the files of a directory are yielded
// in name order, then its subdirectories are visited in name order. An
// unreadable directory is reported through the iterator and its subtree is
// skipped; the rest of the walk continues.
package scan
