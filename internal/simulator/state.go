// Package simulator provides dense statevector evaluation and shot sampling
// for benchmark circuits.
//
// Bit-ordering convention: amplitude index bit (1<<q) corresponds to qubit q,
// so index 0 is the all-zero state and index 2^n-1 the all-one state. Outcome
// bitstrings place qubit q at string position q (leftmost character = qubit 0).
package simulator

import (
	"math"
	"math/cmplx"
)

// StateVector holds the dense amplitudes of an n-qubit register.
// Produced once per run and read-only afterwards.
type StateVector struct {
	Amplitudes []complex128
	Qubits     int
}

// NewStateVector creates the all-zero computational basis state |00...0>.
func NewStateVector(qubits int) *StateVector {
	amps := make([]complex128, 1<<qubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, Qubits: qubits}
}

// ApplyH applies the Hadamard (superposition) gate to qubit q.
func (s *StateVector) ApplyH(q int) {
	factor := complex(1.0/math.Sqrt2, 0)
	n := len(s.Amplitudes)
	bit := 1 << q
	next := make([]complex128, n)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			next[i] = factor * (s.Amplitudes[i] + s.Amplitudes[j])
			next[j] = factor * (s.Amplitudes[i] - s.Amplitudes[j])
		}
	}
	s.Amplitudes = next
}

// ApplyRY rotates qubit q around the Y axis by theta.
func (s *StateVector) ApplyRY(q int, theta float64) {
	n := len(s.Amplitudes)
	bit := 1 << q
	cos := complex(math.Cos(theta/2), 0)
	sin := complex(math.Sin(theta/2), 0)
	next := make([]complex128, n)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			next[i] = cos*s.Amplitudes[i] - sin*s.Amplitudes[j]
			next[j] = sin*s.Amplitudes[i] + cos*s.Amplitudes[j]
		}
	}
	s.Amplitudes = next
}

// ApplyCX applies a controlled-NOT with the given control and target qubits.
func (s *StateVector) ApplyCX(control, target int) {
	n := len(s.Amplitudes)
	cBit := 1 << control
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// Probability returns the Born-rule probability of basis state index i.
func (s *StateVector) Probability(i int) float64 {
	amp := s.Amplitudes[i]
	return real(amp * cmplx.Conj(amp))
}

// Probabilities returns the squared-magnitude distribution over all basis states.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i := range s.Amplitudes {
		probs[i] = s.Probability(i)
	}
	return probs
}

// FormatOutcome renders basis state index as a length-n bitstring with qubit q
// at string position q.
func FormatOutcome(index, qubits int) string {
	buf := make([]byte, qubits)
	for q := 0; q < qubits; q++ {
		if index&(1<<q) != 0 {
			buf[q] = '1'
		} else {
			buf[q] = '0'
		}
	}
	return string(buf)
}
