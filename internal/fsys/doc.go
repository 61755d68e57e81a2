// Package fsys is the filesystem boundary for tidy.
//
// Stages never call the os package for mutations directly; they go through
// FS so tests can inject failures and so the move semantics (no-replace
// rename, cross-device copy fallback) live in one place. OS is the production
// implementation.
package fsys
