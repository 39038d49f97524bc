package analysis

import (
	"gonum.org/v1/gonum/stat"
)

// CompositeIndex aggregates fidelity and mean node correlation into the
// headline scalar: (fidelity + mean(correlations)) / 2. Pure function of
// already-validated inputs; monotonically non-decreasing in both arguments.
func CompositeIndex(fidelityUsed float64, correlations map[string]float64) float64 {
	values := make([]float64, 0, len(correlations))
	for _, v := range correlations {
		values = append(values, v)
	}
	if len(values) == 0 {
		return fidelityUsed / 2
	}
	return (fidelityUsed + stat.Mean(values, nil)) / 2
}
