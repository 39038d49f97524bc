package circuit

import (
	"fmt"
	"math"

	"github.com/quantalab/qbench/internal/topology"
)

// VariationalTheta is the fixed rotation angle of the ansatz layer. The layer
// is a cosmetic elaboration on top of the seeded cascade and must not change
// the idealized two-term target state.
const VariationalTheta = math.Pi / 4

// Build constructs the measured circuit for the descriptor's schedule.
// Construction is deterministic: the same descriptor always yields the same
// gate sequence. The measurement-free twin for exact simulation is obtained
// via Circuit.Unmeasured().
func Build(d *topology.Descriptor) (*Circuit, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid topology: %w", err)
	}

	c := New(d.Qubits)
	switch d.Schedule {
	case topology.ScheduleCascade:
		buildCascade(c)
	case topology.ScheduleGroupedSeed:
		buildGroupedSeed(c, d.Groups)
	case topology.ScheduleVariational:
		buildGroupedSeed(c, d.Groups)
		buildVariationalLayer(c)
	default:
		return nil, fmt.Errorf("unknown schedule kind: %q", d.Schedule)
	}

	c.barrier()
	c.measureAll()
	return c, nil
}

// buildCascade seeds qubit 0 with a superposition and chains entangling gates
// down the register, preparing (|00...0> + |11...1>)/sqrt(2).
func buildCascade(c *Circuit) {
	c.h(0)
	for i := 0; i < c.Qubits-1; i++ {
		c.cx(i, i+1)
	}
}

// buildGroupedSeed seeds each group with a superposition on its first qubit
// fanned out to the other members (star topology within the group), then runs
// a cascade along each group's members.
func buildGroupedSeed(c *Circuit, groups []topology.Group) {
	for _, g := range groups {
		c.h(g.Qubits[0])
		for _, q := range g.Qubits[1:] {
			c.cx(g.Qubits[0], q)
		}
	}
	c.barrier()

	for _, g := range groups {
		for i := 0; i < len(g.Qubits)-1; i++ {
			c.cx(g.Qubits[i], g.Qubits[i+1])
		}
	}
}

// buildVariationalLayer applies a fixed-angle rotation to every qubit,
// interleaved with entangling gates on even-indexed qubits. Mimics a trial
// ansatz layer.
func buildVariationalLayer(c *Circuit) {
	c.barrier()
	for i := 0; i < c.Qubits; i++ {
		c.ry(VariationalTheta, i)
		if i%2 == 0 && i+1 < c.Qubits {
			c.cx(i, i+1)
		}
	}
}
