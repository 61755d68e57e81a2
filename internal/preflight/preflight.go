package preflight

import (
	"errors"

	"tidy/internal/fault"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// marker classifies a failure; nil means fault.ErrAccess.
	marker error
}

// Err returns the failure as a fault-tagged error, or nil when the check
// passed.
func (r Result) Err() error {
	if r.Passed {
		return nil
	}
	return fault.Wrap(r.marker, "preflight", r.Name, r.Detail, nil)
}

// Errors joins every failed result into one error.
func Errors(results []Result) error {
	var errs []error
	for _, r := range results {
		if err := r.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
