// Package circuit models gate sequences over a qubit register and builds the
// entangling schedules the benchmark runs against. Circuits are immutable
// after construction; the measured and measurement-free variants are
// independent copies.
package circuit

import (
	"fmt"
	"strconv"
	"strings"
)

// GateKind identifies the operation a Gate performs.
type GateKind string

const (
	// GateH places the target qubit into an equal superposition.
	GateH GateKind = "h"
	// GateCX entangles control and target (controlled-NOT).
	GateCX GateKind = "cx"
	// GateRY rotates the target qubit around the Y axis by Theta.
	GateRY GateKind = "ry"
	// GateBarrier is a scheduling marker with no unitary effect.
	GateBarrier GateKind = "barrier"
	// GateMeasure marks a projective measurement of the target qubit.
	GateMeasure GateKind = "measure"
)

// Gate is one tagged operation. Control is -1 for single-qubit gates and
// markers; Theta is only meaningful for rotation gates.
type Gate struct {
	Kind    GateKind
	Target  int
	Control int
	Theta   float64
}

// Circuit is an ordered gate sequence over a fixed-size register.
type Circuit struct {
	Qubits int
	Gates  []Gate
}

// New creates an empty circuit over a register of the given size.
func New(qubits int) *Circuit {
	return &Circuit{Qubits: qubits}
}

func (c *Circuit) h(q int)           { c.Gates = append(c.Gates, Gate{Kind: GateH, Target: q, Control: -1}) }
func (c *Circuit) cx(control, q int) { c.Gates = append(c.Gates, Gate{Kind: GateCX, Target: q, Control: control}) }
func (c *Circuit) ry(theta float64, q int) {
	c.Gates = append(c.Gates, Gate{Kind: GateRY, Target: q, Control: -1, Theta: theta})
}
func (c *Circuit) barrier() { c.Gates = append(c.Gates, Gate{Kind: GateBarrier, Target: -1, Control: -1}) }
func (c *Circuit) measureAll() {
	for q := 0; q < c.Qubits; q++ {
		c.Gates = append(c.Gates, Gate{Kind: GateMeasure, Target: q, Control: -1})
	}
}

// Clone returns a deep structural copy.
func (c *Circuit) Clone() *Circuit {
	gates := make([]Gate, len(c.Gates))
	copy(gates, c.Gates)
	return &Circuit{Qubits: c.Qubits, Gates: gates}
}

// Unmeasured returns the measurement-free twin: a structural copy with
// measurement and barrier markers stripped. Used for exact statevector
// evaluation.
func (c *Circuit) Unmeasured() *Circuit {
	gates := make([]Gate, 0, len(c.Gates))
	for _, g := range c.Gates {
		if g.Kind == GateMeasure || g.Kind == GateBarrier {
			continue
		}
		gates = append(gates, g)
	}
	return &Circuit{Qubits: c.Qubits, Gates: gates}
}

// Measured reports whether the circuit carries measurement markers.
func (c *Circuit) Measured() bool {
	for _, g := range c.Gates {
		if g.Kind == GateMeasure {
			return true
		}
	}
	return false
}

// Serialize renders a stable QASM-style text description of the circuit.
// The output is deterministic for a given circuit and is carried verbatim in
// the run report.
func (c *Circuit) Serialize() string {
	var b strings.Builder
	b.WriteString("OPENQASM 2.0;\n")
	b.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&b, "qreg q[%d];\n", c.Qubits)
	if c.Measured() {
		fmt.Fprintf(&b, "creg c[%d];\n", c.Qubits)
	}
	for _, g := range c.Gates {
		switch g.Kind {
		case GateH:
			fmt.Fprintf(&b, "h q[%d];\n", g.Target)
		case GateCX:
			fmt.Fprintf(&b, "cx q[%d],q[%d];\n", g.Control, g.Target)
		case GateRY:
			fmt.Fprintf(&b, "ry(%s) q[%d];\n", strconv.FormatFloat(g.Theta, 'g', -1, 64), g.Target)
		case GateBarrier:
			b.WriteString("barrier q;\n")
		case GateMeasure:
			fmt.Fprintf(&b, "measure q[%d] -> c[%d];\n", g.Target, g.Target)
		}
	}
	return b.String()
}
