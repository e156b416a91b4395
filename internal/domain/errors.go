package domain

import (
	"errors"
	"fmt"
)

// ErrInfeasible is returned when the solver found no assignment satisfying
// all hard constraints within its time budget. It is an expected outcome,
// reported to the caller as optimized_status=false, never a crash.
var ErrInfeasible = errors.New("no feasible assignment found")

// ValidationError is a malformed request, rejected before the builder runs.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// BuildError aborts a solve before the solver is invoked: an unlocatable
// location, an empty order set, or a violated builder invariant.
type BuildError struct {
	Msg string
	Err error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build problem: %s: %v", e.Msg, e.Err)
	}
	return "build problem: " + e.Msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// ProviderError wraps a distance-matrix acquisition failure. It is never
// silently zero-filled; the whole build fails instead.
type ProviderError struct{ Err error }

func (e *ProviderError) Error() string { return "distance provider: " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// InvariantError signals an index or demand inconsistency during decoding
// that is impossible while the builder invariants hold. It indicates a
// programming fault, not bad user input, so callers fail loudly on it.
type InvariantError struct{ Msg string }

func (e *InvariantError) Error() string { return "decoder invariant violated: " + e.Msg }
