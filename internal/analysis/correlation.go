package analysis

import (
	"fmt"

	"github.com/quantalab/qbench/internal/simulator"
	"github.com/quantalab/qbench/internal/topology"
)

// Correlations computes, per node group, the fraction of sampled outcomes
// whose group-local substring is uniform (all-zero or all-one).
//
// The computation batches over the distinct outcomes of the distribution
// rather than over individual shots: with thousands of shots collapsing onto
// a handful of distinct bitstrings, each bitstring's group substrings are
// classified once and weighted by its count.
func Correlations(counts simulator.Counts, groups []topology.Group) (map[string]float64, error) {
	total := counts.Total()
	if total == 0 {
		return nil, fmt.Errorf("count distribution is empty")
	}

	qubits := qubitsFromCounts(counts)
	for _, g := range groups {
		for _, q := range g.Qubits {
			if q < 0 || q >= qubits {
				return nil, fmt.Errorf("group %q references qubit %d outside %d-bit outcomes", g.Name, q, qubits)
			}
		}
	}

	correlated := make(map[string]int, len(groups))
	for outcome, count := range counts {
		for _, g := range groups {
			if groupUniform(outcome, g.Qubits) {
				correlated[g.Name] += count
			}
		}
	}

	result := make(map[string]float64, len(groups))
	for _, g := range groups {
		result[g.Name] = float64(correlated[g.Name]) / float64(total)
	}
	return result, nil
}

// groupUniform reports whether the outcome's bits at the group's qubit
// positions are all equal.
func groupUniform(outcome string, qubits []int) bool {
	first := outcome[qubits[0]]
	for _, q := range qubits[1:] {
		if outcome[q] != first {
			return false
		}
	}
	return true
}
