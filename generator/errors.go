package generator

import "fmt"

// ScenarioConstraintError reports a sampled entity/amount/date combination
// that cannot satisfy the scenario invariants. It is recoverable: the
// builder retries with fresh samples.
type ScenarioConstraintError struct {
	Reason string
}

func (e *ScenarioConstraintError) Error() string {
	return "scenario constraint: " + e.Reason
}

func constraintErrf(format string, args ...any) error {
	return &ScenarioConstraintError{Reason: fmt.Sprintf(format, args...)}
}

// QuotaExhaustionError is fatal for the run: a slot exhausted its retry
// budget. Silently under-filling a quota would invalidate the declared class
// balance, so the run stops here.
type QuotaExhaustionError struct {
	Block      string
	SubPattern string
	Slot       int
	Attempts   int
	LastErr    error
}

func (e *QuotaExhaustionError) Error() string {
	return fmt.Sprintf("quota exhausted: block=%s sub_pattern=%s slot=%d after %d attempts: %v",
		e.Block, e.SubPattern, e.Slot, e.Attempts, e.LastErr)
}

func (e *QuotaExhaustionError) Unwrap() error { return e.LastErr }

// InvariantViolationError means a post-commit consistency check failed.
// This is a defect, never an expected condition; the run aborts rather than
// emitting inconsistent ground truth.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return "invariant violation: " + e.Detail
}
