package stripper

import (
	"errors"
	"fmt"
)

// ErrInsufficientPairs is returned when the pairing planner produced zero
// pairs: every adjacent maturity gap exceeded the configured pairing
// distance, so nothing could be jointly solved.
var ErrInsufficientPairs = errors.New("stripper: pairing produced zero pairs")

// SolverDidNotConvergeError reports that a pair's multidimensional solve
// exhausted its iteration budget or failed its termination predicate.
type SolverDidNotConvergeError struct {
	PairIndex   int
	LastIterate []float64
}

func (e *SolverDidNotConvergeError) Error() string {
	return fmt.Sprintf("stripper: pair %d did not converge, last iterate %v", e.PairIndex, e.LastIterate)
}

// LeftoverSolveFailedError reports that the 1-D solve for a trailing
// leftover instrument did not bracket/converge within the iteration budget.
type LeftoverSolveFailedError struct {
	Instrument Instrument
	Cause      error
}

func (e *LeftoverSolveFailedError) Error() string {
	return fmt.Sprintf("stripper: leftover solve failed for instrument ending %s: %v", e.Instrument.End(), e.Cause)
}

func (e *LeftoverSolveFailedError) Unwrap() error {
	return e.Cause
}
