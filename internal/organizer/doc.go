// Package organizer performs the side effect of a classification decision:
// moving a file into its group folder, deleting a confirmed duplicate, or
// renaming a file in place.
//
// Every mutation is collision-safe. Existing targets are never overwritten;
// the organizer reports fault.ErrCollision instead. Dry runs perform the same
// read-only checks (so predicted collisions still surface as failures) but
// never touch the filesystem. Failures are returned in the Outcome so the
// caller can record them and carry on with the next file.
package organizer
