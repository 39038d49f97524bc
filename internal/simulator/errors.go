package simulator

import "fmt"

// SimulationError is returned when a simulation step cannot produce a valid
// result (resource exhaustion, invalid parameters, diverged evaluation).
// Exact-state failures are recovered by the fidelity estimator via a
// documented fallback; sampling failures are fatal to the run.
type SimulationError struct {
	Step   string // "exact" or "sampling"
	Reason string
	Err    error
}

func (e *SimulationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s simulation failed: %s: %v", e.Step, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s simulation failed: %s", e.Step, e.Reason)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}
