// Package topology defines the run topology: the qubit register, the grouping
// of qubits into named nodes, and the entangling schedule shape. A Descriptor
// is built once per run configuration and read-only afterwards; the whole
// pipeline is a pure function of it (plus shot count and sampler randomness).
package topology

import (
	"fmt"
)

// Schedule identifies the shape of the entangling gate schedule.
type Schedule string

const (
	// ScheduleCascade - superposition seed on qubit 0 followed by a CX chain.
	// The canonical construction for the two-term maximally-entangled target.
	ScheduleCascade Schedule = "cascade"
	// ScheduleGroupedSeed - per-group star seeding followed by group-wise cascades.
	ScheduleGroupedSeed Schedule = "grouped_seed"
	// ScheduleVariational - grouped seeding plus a fixed-angle rotation ansatz layer.
	ScheduleVariational Schedule = "variational"
)

// Valid reports whether s is a known schedule kind.
func (s Schedule) Valid() bool {
	switch s {
	case ScheduleCascade, ScheduleGroupedSeed, ScheduleVariational:
		return true
	}
	return false
}

// Group is a named, disjoint subset of qubits treated as one correlated unit
// for reporting purposes.
type Group struct {
	Name   string
	Qubits []int
}

// Descriptor describes one run's topology. Immutable once a run starts.
type Descriptor struct {
	Qubits   int
	Groups   []Group
	Schedule Schedule
}

// New builds a Descriptor with contiguous groups of groupSize qubits, one per
// node name, in order: node i owns qubits [i*groupSize, (i+1)*groupSize).
func New(qubits int, nodeNames []string, groupSize int, schedule Schedule) (*Descriptor, error) {
	if groupSize < 1 {
		return nil, fmt.Errorf("group size must be positive, got %d", groupSize)
	}
	groups := make([]Group, 0, len(nodeNames))
	for i, name := range nodeNames {
		members := make([]int, 0, groupSize)
		for j := 0; j < groupSize; j++ {
			members = append(members, i*groupSize+j)
		}
		groups = append(groups, Group{Name: name, Qubits: members})
	}

	d := &Descriptor{
		Qubits:   qubits,
		Groups:   groups,
		Schedule: schedule,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// DefaultNodeNames returns generated node names ("node-1", "node-2", ...) for
// requests that do not name their nodes.
func DefaultNodeNames(count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("node-%d", i+1)
	}
	return names
}

// Validate checks the Descriptor invariants: at least two qubits, a known
// schedule, uniformly sized groups with unique names, and group members that
// are disjoint and within [0, Qubits).
func (d *Descriptor) Validate() error {
	if d.Qubits < 2 {
		return fmt.Errorf("register must have at least 2 qubits, got %d", d.Qubits)
	}
	if !d.Schedule.Valid() {
		return fmt.Errorf("unknown schedule kind: %q", d.Schedule)
	}
	if len(d.Groups) == 0 {
		return fmt.Errorf("at least one node group is required")
	}

	groupSize := len(d.Groups[0].Qubits)
	if groupSize == 0 {
		return fmt.Errorf("group %q has no qubits", d.Groups[0].Name)
	}

	seenNames := make(map[string]bool, len(d.Groups))
	seenQubits := make(map[int]string, d.Qubits)
	for _, g := range d.Groups {
		if g.Name == "" {
			return fmt.Errorf("group names must not be empty")
		}
		if seenNames[g.Name] {
			return fmt.Errorf("duplicate group name: %q", g.Name)
		}
		seenNames[g.Name] = true

		if len(g.Qubits) != groupSize {
			return fmt.Errorf("group %q has %d qubits, expected uniform size %d", g.Name, len(g.Qubits), groupSize)
		}
		for _, q := range g.Qubits {
			if q < 0 || q >= d.Qubits {
				return fmt.Errorf("group %q references qubit %d outside register [0,%d)", g.Name, q, d.Qubits)
			}
			if owner, taken := seenQubits[q]; taken {
				return fmt.Errorf("qubit %d belongs to both %q and %q", q, owner, g.Name)
			}
			seenQubits[q] = g.Name
		}
	}

	return nil
}

// GroupSize returns the uniform group size.
func (d *Descriptor) GroupSize() int {
	return len(d.Groups[0].Qubits)
}

// NodeNames returns the group names in order.
func (d *Descriptor) NodeNames() []string {
	names := make([]string, len(d.Groups))
	for i, g := range d.Groups {
		names[i] = g.Name
	}
	return names
}
