// Package fault defines the error taxonomy shared by every tidy stage.
//
// Errors are tagged with one of the exported sentinel markers through Wrap so
// callers can classify failures with errors.Is while still seeing the stage,
// operation, and underlying cause in the message. Per-file failures carry a
// marker into the run report; structural failures abort the run before any
// action is taken.
package fault
