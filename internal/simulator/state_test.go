package simulator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateVectorIsAllZero(t *testing.T) {
	s := NewStateVector(3)

	require.Len(t, s.Amplitudes, 8)
	assert.InDelta(t, 1.0, s.Probability(0), 1e-12)
	for i := 1; i < 8; i++ {
		assert.InDelta(t, 0.0, s.Probability(i), 1e-12)
	}
}

func TestApplyHCreatesEqualSuperposition(t *testing.T) {
	s := NewStateVector(1)
	s.ApplyH(0)

	assert.InDelta(t, 0.5, s.Probability(0), 1e-12)
	assert.InDelta(t, 0.5, s.Probability(1), 1e-12)

	// H is its own inverse
	s.ApplyH(0)
	assert.InDelta(t, 1.0, s.Probability(0), 1e-12)
}

func TestHThenCXPreparesTwoTermState(t *testing.T) {
	s := NewStateVector(2)
	s.ApplyH(0)
	s.ApplyCX(0, 1)

	// (|00> + |11>)/sqrt(2): all mass on indices 0 and 3
	assert.InDelta(t, 0.5, s.Probability(0), 1e-12)
	assert.InDelta(t, 0.0, s.Probability(1), 1e-12)
	assert.InDelta(t, 0.0, s.Probability(2), 1e-12)
	assert.InDelta(t, 0.5, s.Probability(3), 1e-12)
}

func TestApplyCXLeavesControlZeroAlone(t *testing.T) {
	s := NewStateVector(2)
	s.ApplyCX(0, 1)

	assert.InDelta(t, 1.0, s.Probability(0), 1e-12)
}

func TestApplyRYRotatesProbabilityMass(t *testing.T) {
	s := NewStateVector(1)
	s.ApplyRY(0, math.Pi)

	// RY(pi)|0> = |1> up to phase
	assert.InDelta(t, 0.0, s.Probability(0), 1e-12)
	assert.InDelta(t, 1.0, s.Probability(1), 1e-12)

	s = NewStateVector(1)
	s.ApplyRY(0, math.Pi/2)
	assert.InDelta(t, 0.5, s.Probability(0), 1e-12)
	assert.InDelta(t, 0.5, s.Probability(1), 1e-12)
}

func TestProbabilitiesSumToOne(t *testing.T) {
	s := NewStateVector(3)
	s.ApplyH(0)
	s.ApplyCX(0, 1)
	s.ApplyRY(2, math.Pi/4)

	sum := 0.0
	for _, p := range s.Probabilities() {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestFormatOutcome(t *testing.T) {
	tests := []struct {
		index    int
		qubits   int
		expected string
	}{
		{0, 3, "000"},
		{7, 3, "111"},
		{1, 3, "100"}, // index bit 1<<0 maps to string position 0
		{4, 3, "001"},
		{5, 4, "1010"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatOutcome(tt.index, tt.qubits))
	}
}
