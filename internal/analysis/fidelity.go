// Package analysis derives the benchmark metrics from simulation output:
// fidelity against the idealized two-term target state, per-node correlation
// fractions, and the composite index aggregating both.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbench/internal/simulator"
)

// =============================================================================
// FIDELITY CONSTANTS
// =============================================================================
// The ideal target is the two-term equal superposition across the full
// register: (|00...0> + |11...1>)/sqrt(2). Exact fidelity is the probability
// mass the prepared state places on those two basis states.

const (
	// FallbackExactFidelity is the theoretical fidelity of an ideal two-term
	// equal-superposition state, used when exact simulation is unavailable.
	FallbackExactFidelity = 0.5

	// DefaultStability and DefaultErrorRate are the documented substitutes
	// when no error-correction collaborator is reachable.
	DefaultStability = 0.95
	DefaultErrorRate = 0.05
)

// CorrectionResult carries externally supplied error-correction metrics and
// the corrected fidelity derived from them.
type CorrectionResult struct {
	Fidelity  float64
	Stability float64
	ErrorRate float64
}

// CorrectionProvider is the optional external error-correction collaborator.
// Absence or failure must never fail a run; the estimator substitutes the
// documented defaults instead.
type CorrectionProvider interface {
	Correct(ctx context.Context, exactFidelity float64) (CorrectionResult, error)
}

// FidelityMetrics is the full fidelity picture of one run.
type FidelityMetrics struct {
	Exact             float64 // probability mass on the two target basis states
	Raw               float64 // same mass measured from shot counts
	Used              float64 // fidelity used downstream (possibly corrected)
	ExactFallback     bool    // true when exact simulation failed and the fallback constant was used
	CorrectionApplied bool
	Stability         float64
	ErrorRate         float64
}

// FidelityEstimator computes exact and sampled fidelity against the idealized
// target state. The correction provider may be nil.
type FidelityEstimator struct {
	correction CorrectionProvider
	log        zerolog.Logger
}

// NewFidelityEstimator creates a fidelity estimator. Pass a nil provider to
// disable the external correction path.
func NewFidelityEstimator(correction CorrectionProvider, log zerolog.Logger) *FidelityEstimator {
	return &FidelityEstimator{
		correction: correction,
		log:        log.With().Str("service", "fidelity").Logger(),
	}
}

// Estimate derives FidelityMetrics from the exact state (nil when exact
// simulation failed) and the sampled count distribution.
func (e *FidelityEstimator) Estimate(ctx context.Context, state *simulator.StateVector, counts simulator.Counts) (FidelityMetrics, error) {
	total := counts.Total()
	if total == 0 {
		return FidelityMetrics{}, fmt.Errorf("count distribution is empty")
	}

	m := FidelityMetrics{
		Stability: DefaultStability,
		ErrorRate: DefaultErrorRate,
	}

	if state != nil {
		m.Exact = state.Probability(0) + state.Probability(len(state.Amplitudes)-1)
	} else {
		// Exact simulation failed upstream; fall back to the theoretical
		// value and flag the report.
		m.Exact = FallbackExactFidelity
		m.ExactFallback = true
		e.log.Warn().Msg("Exact state unavailable, using theoretical fallback fidelity")
	}

	qubits := qubitsFromCounts(counts)
	allZero := strings.Repeat("0", qubits)
	allOne := strings.Repeat("1", qubits)
	m.Raw = float64(counts[allZero]+counts[allOne]) / float64(total)

	m.Used = m.Exact
	if e.correction != nil {
		result, err := e.correction.Correct(ctx, m.Exact)
		if err != nil {
			// Correction is best-effort enrichment, never fatal
			e.log.Warn().Err(err).Msg("Correction collaborator unavailable, using uncorrected fidelity")
		} else {
			m.Used = result.Fidelity
			m.Stability = result.Stability
			m.ErrorRate = result.ErrorRate
			m.CorrectionApplied = true
		}
	}

	return m, nil
}

// qubitsFromCounts derives the register size from any outcome key.
// All keys share the same fixed length.
func qubitsFromCounts(counts simulator.Counts) int {
	for outcome := range counts {
		return len(outcome)
	}
	return 0
}
