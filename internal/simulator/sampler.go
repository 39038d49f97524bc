package simulator

import (
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbench/internal/circuit"
)

// Counts is a frequency distribution over outcome bitstrings. The sum of all
// values equals the configured shot count exactly.
type Counts map[string]int

// Total returns the total number of recorded shots.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Sampler executes a measured circuit repeatedly, projecting the final state
// onto the measurement basis according to amplitude-squared probabilities.
// Non-deterministic by default; reproducible under WithSeed.
type Sampler struct {
	rng *rand.Rand
	log zerolog.Logger
}

// NewSampler creates a sampler seeded from the current time.
func NewSampler(log zerolog.Logger) *Sampler {
	return newSampler(time.Now().UnixNano(), log)
}

// NewSamplerWithSeed creates a reproducible sampler for testing and
// idempotence checks.
func NewSamplerWithSeed(seed int64, log zerolog.Logger) *Sampler {
	return newSampler(seed, log)
}

func newSampler(seed int64, log zerolog.Logger) *Sampler {
	return &Sampler{
		rng: rand.New(rand.NewSource(seed)),
		log: log.With().Str("service", "sampler").Logger(),
	}
}

// Run executes the circuit with the given number of trials and aggregates the
// outcomes into counts. The final pre-measurement state is evaluated once;
// each trial is an independent draw from its Born-rule distribution, which is
// equivalent in aggregate to projecting per shot. Returns a *SimulationError
// for a non-positive shot count.
func (s *Sampler) Run(c *circuit.Circuit, shots int) (Counts, error) {
	if shots <= 0 {
		return nil, &SimulationError{Step: "sampling", Reason: "shot count must be positive"}
	}
	if c.Qubits < 1 {
		return nil, &SimulationError{Step: "sampling", Reason: "register must have at least one qubit"}
	}

	state := NewStateVector(c.Qubits)
	evolve(state, c)

	// Cumulative distribution over basis states for binary-search sampling
	probs := state.Probabilities()
	cumulative := make([]float64, len(probs))
	sum := 0.0
	for i, p := range probs {
		sum += p
		cumulative[i] = sum
	}

	counts := make(Counts)
	for i := 0; i < shots; i++ {
		r := s.rng.Float64() * sum
		idx := sort.SearchFloat64s(cumulative, r)
		if idx == len(cumulative) {
			idx = len(cumulative) - 1
		}
		counts[FormatOutcome(idx, c.Qubits)]++
	}

	s.log.Debug().
		Int("qubits", c.Qubits).
		Int("shots", shots).
		Int("distinct_outcomes", len(counts)).
		Msg("Sampling complete")

	return counts, nil
}
