// Package report assembles the immutable result record of a benchmark run.
// The Report is the sole integration surface for downstream consumers:
// persistence, charting, and anchoring all read from it and never write
// metric fields.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/quantalab/qbench/internal/analysis"
	"github.com/quantalab/qbench/internal/simulator"
	"github.com/quantalab/qbench/internal/topology"
)

const (
	// StatusComplete / StatusFailed classify the run against the single
	// pass/fail gate.
	StatusComplete = "COMPLETE"
	StatusFailed   = "FAILED"

	// CompleteFidelityThreshold is the pass/fail gate for the whole run.
	CompleteFidelityThreshold = 0.97

	// TopOutcomeCount bounds the most-frequent-outcomes excerpt carried in
	// the report.
	TopOutcomeCount = 10

	// metricTolerance absorbs floating-point drift when range-validating
	// metrics. Values outside [0,1] beyond this are programming defects and
	// fail assembly loudly; nothing is clamped.
	metricTolerance = 1e-9
)

// OutcomeCount is one entry of the top-K outcome excerpt.
type OutcomeCount struct {
	Bitstring string `json:"bitstring"`
	Count     int    `json:"count"`
}

// Report is the immutable snapshot of one benchmark run. Field names are the
// wire contract: existing fields never change meaning, new optional fields
// may be appended. Anchor fields are the only ones attached after assembly.
type Report struct {
	RunID             string             `json:"run_id" msgpack:"run_id"`
	RunLabel          string             `json:"run_label" msgpack:"run_label"`
	Timestamp         time.Time          `json:"timestamp" msgpack:"timestamp"`
	Status            string             `json:"status" msgpack:"status"`
	Qubits            int                `json:"qubits" msgpack:"qubits"`
	Shots             int                `json:"shots" msgpack:"shots"`
	Schedule          string             `json:"schedule" msgpack:"schedule"`
	ExactFidelity     float64            `json:"exact_fidelity" msgpack:"exact_fidelity"`
	RawFidelity       float64            `json:"raw_fidelity" msgpack:"raw_fidelity"`
	Fidelity          float64            `json:"fidelity" msgpack:"fidelity"`
	ExactFallback     bool               `json:"exact_fallback" msgpack:"exact_fallback"`
	CorrectionApplied bool               `json:"correction_applied" msgpack:"correction_applied"`
	Stability         float64            `json:"stability" msgpack:"stability"`
	ErrorRate         float64            `json:"error_rate" msgpack:"error_rate"`
	NodeCorrelations  map[string]float64 `json:"node_correlations" msgpack:"node_correlations"`
	CompositeIndex    float64            `json:"composite_index" msgpack:"composite_index"`
	TopOutcomes       []OutcomeCount     `json:"top_outcomes" msgpack:"top_outcomes"`
	CircuitQASM       string             `json:"circuit_qasm" msgpack:"circuit_qasm"`
	Anchored          bool               `json:"anchored" msgpack:"anchored"`
	AnchorHash        string             `json:"anchor_hash,omitempty" msgpack:"anchor_hash"`
	AnchorProof       string             `json:"anchor_proof,omitempty" msgpack:"anchor_proof"`
}

// AssembleInput carries everything the assembler needs from the pipeline.
type AssembleInput struct {
	RunLabel     string
	Descriptor   *topology.Descriptor
	Shots        int
	Counts       simulator.Counts
	Fidelity     analysis.FidelityMetrics
	Correlations map[string]float64
	Composite    float64
	CircuitQASM  string
}

// Assemble builds the immutable Report. All numeric outputs are
// range-validated against the data-model invariants before inclusion;
// a violation is an error, never a silent clamp.
func Assemble(in AssembleInput) (*Report, error) {
	if in.Counts.Total() != in.Shots {
		return nil, fmt.Errorf("count distribution sums to %d, expected %d shots", in.Counts.Total(), in.Shots)
	}
	if err := validateUnitRange("exact_fidelity", in.Fidelity.Exact); err != nil {
		return nil, err
	}
	if err := validateUnitRange("raw_fidelity", in.Fidelity.Raw); err != nil {
		return nil, err
	}
	if err := validateUnitRange("fidelity", in.Fidelity.Used); err != nil {
		return nil, err
	}
	if err := validateUnitRange("composite_index", in.Composite); err != nil {
		return nil, err
	}
	if len(in.Correlations) != len(in.Descriptor.Groups) {
		return nil, fmt.Errorf("correlation map has %d entries, expected one per group (%d)",
			len(in.Correlations), len(in.Descriptor.Groups))
	}
	for node, value := range in.Correlations {
		if err := validateUnitRange(fmt.Sprintf("node_correlations[%s]", node), value); err != nil {
			return nil, err
		}
	}

	status := StatusFailed
	if in.Fidelity.Used >= CompleteFidelityThreshold {
		status = StatusComplete
	}

	correlations := make(map[string]float64, len(in.Correlations))
	for node, value := range in.Correlations {
		correlations[node] = value
	}

	return &Report{
		RunID:             uuid.NewString(),
		RunLabel:          in.RunLabel,
		Timestamp:         time.Now().UTC(),
		Status:            status,
		Qubits:            in.Descriptor.Qubits,
		Shots:             in.Shots,
		Schedule:          string(in.Descriptor.Schedule),
		ExactFidelity:     in.Fidelity.Exact,
		RawFidelity:       in.Fidelity.Raw,
		Fidelity:          in.Fidelity.Used,
		ExactFallback:     in.Fidelity.ExactFallback,
		CorrectionApplied: in.Fidelity.CorrectionApplied,
		Stability:         in.Fidelity.Stability,
		ErrorRate:         in.Fidelity.ErrorRate,
		NodeCorrelations:  correlations,
		CompositeIndex:    in.Composite,
		TopOutcomes:       topOutcomes(in.Counts, TopOutcomeCount),
		CircuitQASM:       in.CircuitQASM,
	}, nil
}

// AttachAnchor records the external ledger reference. It only appends the
// anchoring fields; metric fields are never touched after assembly.
func (r *Report) AttachAnchor(entryHash, otsProof string) {
	r.Anchored = true
	r.AnchorHash = entryHash
	r.AnchorProof = otsProof
}

// topOutcomes returns the k most frequent outcomes sorted by descending
// count, ties broken by bitstring for a deterministic excerpt.
func topOutcomes(counts simulator.Counts, k int) []OutcomeCount {
	all := make([]OutcomeCount, 0, len(counts))
	for bitstring, count := range counts {
		all = append(all, OutcomeCount{Bitstring: bitstring, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Bitstring < all[j].Bitstring
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}

func validateUnitRange(field string, value float64) error {
	if value < -metricTolerance || value > 1+metricTolerance {
		return fmt.Errorf("%s out of range: %v is not within [0,1]", field, value)
	}
	return nil
}
