package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbench/internal/topology"
)

func mustTopology(t *testing.T, qubits int, nodes int, groupSize int, schedule topology.Schedule) *topology.Descriptor {
	t.Helper()
	d, err := topology.New(qubits, topology.DefaultNodeNames(nodes), groupSize, schedule)
	require.NoError(t, err)
	return d
}

func countGates(c *Circuit, kind GateKind) int {
	n := 0
	for _, g := range c.Gates {
		if g.Kind == kind {
			n++
		}
	}
	return n
}

func TestBuildCascade(t *testing.T) {
	d := mustTopology(t, 4, 2, 2, topology.ScheduleCascade)

	c, err := Build(d)
	require.NoError(t, err)

	assert.Equal(t, 4, c.Qubits)
	assert.True(t, c.Measured())

	// One superposition seed on qubit 0, then a CX chain down the register
	require.Equal(t, GateH, c.Gates[0].Kind)
	assert.Equal(t, 0, c.Gates[0].Target)
	assert.Equal(t, 1, countGates(c, GateH))
	assert.Equal(t, 3, countGates(c, GateCX))
	assert.Equal(t, 4, countGates(c, GateMeasure))

	for i := 0; i < 3; i++ {
		g := c.Gates[1+i]
		assert.Equal(t, GateCX, g.Kind)
		assert.Equal(t, i, g.Control)
		assert.Equal(t, i+1, g.Target)
	}
}

func TestBuildGroupedSeed(t *testing.T) {
	d := mustTopology(t, 6, 2, 3, topology.ScheduleGroupedSeed)

	c, err := Build(d)
	require.NoError(t, err)

	// One seed per group
	assert.Equal(t, 2, countGates(c, GateH))
	// Star fan-out: 2 per group; intra-group cascade: 2 per group
	assert.Equal(t, 8, countGates(c, GateCX))
	assert.Equal(t, 0, countGates(c, GateRY))
	assert.Equal(t, 6, countGates(c, GateMeasure))

	// Seeds land on each group's first qubit
	assert.Equal(t, 0, c.Gates[0].Target)
}

func TestBuildVariationalAddsAnsatzLayer(t *testing.T) {
	grouped := mustTopology(t, 6, 2, 3, topology.ScheduleGroupedSeed)
	variational := mustTopology(t, 6, 2, 3, topology.ScheduleVariational)

	gc, err := Build(grouped)
	require.NoError(t, err)
	vc, err := Build(variational)
	require.NoError(t, err)

	// Rotation on every qubit, entangler on even indices with a right neighbor
	assert.Equal(t, 6, countGates(vc, GateRY))
	assert.Equal(t, countGates(gc, GateCX)+3, countGates(vc, GateCX))

	for _, g := range vc.Gates {
		if g.Kind == GateRY {
			assert.InDelta(t, VariationalTheta, g.Theta, 1e-15)
		}
	}
}

func TestBuildVariationalOddRegisterSkipsDanglingEntangler(t *testing.T) {
	d, err := topology.New(5, []string{"solo"}, 5, topology.ScheduleVariational)
	require.NoError(t, err)

	c, err := Build(d)
	require.NoError(t, err)

	for _, g := range c.Gates {
		if g.Kind == GateCX {
			assert.Less(t, g.Target, 5)
			assert.Less(t, g.Control, 5)
		}
	}
	assert.Equal(t, 5, countGates(c, GateRY))
}

func TestBuildIsDeterministic(t *testing.T) {
	d := mustTopology(t, 8, 4, 2, topology.ScheduleVariational)

	first, err := Build(d)
	require.NoError(t, err)
	second, err := Build(d)
	require.NoError(t, err)

	assert.Equal(t, first.Gates, second.Gates)
	assert.Equal(t, first.Serialize(), second.Serialize())
}

func TestBuildRejectsInvalidTopology(t *testing.T) {
	d := &topology.Descriptor{Qubits: 1, Schedule: topology.ScheduleCascade}

	_, err := Build(d)
	assert.Error(t, err)
}
