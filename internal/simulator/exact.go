package simulator

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
	"gonum.org/v1/gonum/floats"

	"github.com/quantalab/qbench/internal/circuit"
)

// normTolerance bounds the acceptable drift of the state norm from 1.
// Every gate applied here is unitary, so anything beyond floating-point
// noise indicates a diverged evaluation.
const normTolerance = 1e-9

// ExactSimulator evaluates a circuit's final amplitude vector with no
// stochastic sampling. Memory cost is exponential in register size, so
// admission is checked against both the configured bound and the memory
// actually available on the host.
type ExactSimulator struct {
	maxQubits int
	log       zerolog.Logger
}

// NewExactSimulator creates an exact statevector simulator that rejects
// registers larger than maxQubits.
func NewExactSimulator(maxQubits int, log zerolog.Logger) *ExactSimulator {
	return &ExactSimulator{
		maxQubits: maxQubits,
		log:       log.With().Str("service", "exact-simulator").Logger(),
	}
}

// Run evaluates the circuit against the all-zero initial state and returns
// the final StateVector. Measurement and barrier markers are ignored, so
// callers normally pass the measurement-free variant. Returns a
// *SimulationError on admission rejection or diverged evaluation.
func (s *ExactSimulator) Run(c *circuit.Circuit) (*StateVector, error) {
	if c.Qubits < 1 {
		return nil, &SimulationError{Step: "exact", Reason: "register must have at least one qubit"}
	}
	if c.Qubits > s.maxQubits {
		return nil, &SimulationError{
			Step:   "exact",
			Reason: "register exceeds admission bound",
		}
	}
	if err := checkMemoryAdmission(c.Qubits); err != nil {
		return nil, err
	}

	state := NewStateVector(c.Qubits)
	evolve(state, c)

	// Sum of squared magnitudes must stay 1 within tolerance
	norm := floats.Sum(state.Probabilities())
	if math.Abs(norm-1) > normTolerance {
		s.log.Error().Float64("norm", norm).Int("qubits", c.Qubits).Msg("Statevector evaluation diverged")
		return nil, &SimulationError{Step: "exact", Reason: "statevector norm diverged"}
	}

	s.log.Debug().Int("qubits", c.Qubits).Int("gates", len(c.Gates)).Msg("Exact simulation complete")
	return state, nil
}

// checkMemoryAdmission rejects registers whose dense state (plus the scratch
// buffer some gate kernels allocate) would not fit in available memory.
func checkMemoryAdmission(qubits int) error {
	// complex128 amplitudes, doubled for the scratch copy
	required := uint64(32) << qubits

	vm, err := mem.VirtualMemory()
	if err != nil {
		// Memory stats unavailable - fall through to the configured bound only
		return nil
	}
	if required > vm.Available {
		return &SimulationError{
			Step:   "exact",
			Reason: "insufficient memory for dense statevector",
		}
	}
	return nil
}

// evolve applies the circuit's unitary gates to the state in order, skipping
// barrier and measurement markers.
func evolve(state *StateVector, c *circuit.Circuit) {
	for _, g := range c.Gates {
		switch g.Kind {
		case circuit.GateH:
			state.ApplyH(g.Target)
		case circuit.GateRY:
			state.ApplyRY(g.Target, g.Theta)
		case circuit.GateCX:
			state.ApplyCX(g.Control, g.Target)
		case circuit.GateBarrier, circuit.GateMeasure:
			// markers, no unitary effect
		}
	}
}
