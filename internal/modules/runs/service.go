// Package runs orchestrates the simulation-and-scoring pipeline: circuit
// construction, exact and sampled simulation, metric derivation, report
// assembly, best-effort anchoring, and history persistence.
package runs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbench/internal/analysis"
	"github.com/quantalab/qbench/internal/circuit"
	"github.com/quantalab/qbench/internal/clients/anchor"
	"github.com/quantalab/qbench/internal/report"
	"github.com/quantalab/qbench/internal/simulator"
	"github.com/quantalab/qbench/internal/topology"
)

// StateSimulator evaluates a circuit's exact final state.
type StateSimulator interface {
	Run(c *circuit.Circuit) (*simulator.StateVector, error)
}

// ShotSampler produces a count distribution from repeated measurement.
type ShotSampler interface {
	Run(c *circuit.Circuit, shots int) (simulator.Counts, error)
}

// Anchorer submits a report digest to the external append-only ledger.
type Anchorer interface {
	Submit(ctx context.Context, runLabel string, payload map[string]interface{}) (anchor.Entry, error)
}

// ReportSink consumes completed reports (the append-only history log).
type ReportSink interface {
	Save(r *report.Report) error
}

// Request describes one benchmark run.
type Request struct {
	Label     string            `json:"label"`
	Qubits    int               `json:"qubits"`
	NodeNames []string          `json:"nodes,omitempty"`
	GroupSize int               `json:"group_size,omitempty"`
	Schedule  topology.Schedule `json:"schedule"`
	Shots     int               `json:"shots,omitempty"`
	Seed      *int64            `json:"seed,omitempty"` // fixed sampler seed for reproducible runs
}

// Config holds run service defaults.
type Config struct {
	DefaultShots     int
	DefaultGroupSize int
}

// Service executes benchmark runs. Each run is a pure function of its request
// plus sampler randomness; no state is shared across runs.
type Service struct {
	cfg        Config
	exact      StateSimulator
	newSampler func(seed *int64) ShotSampler
	estimator  *analysis.FidelityEstimator
	anchorer   Anchorer // nil disables anchoring
	sink       ReportSink
	log        zerolog.Logger
}

// NewService creates a run service. anchorer may be nil (anchoring disabled);
// sink receives every completed report.
func NewService(cfg Config, exact StateSimulator, estimator *analysis.FidelityEstimator, anchorer Anchorer, sink ReportSink, log zerolog.Logger) *Service {
	svcLog := log.With().Str("service", "runs").Logger()
	return &Service{
		cfg:       cfg,
		exact:     exact,
		estimator: estimator,
		anchorer:  anchorer,
		sink:      sink,
		log:       svcLog,
		newSampler: func(seed *int64) ShotSampler {
			if seed != nil {
				return simulator.NewSamplerWithSeed(*seed, svcLog)
			}
			return simulator.NewSampler(svcLog)
		},
	}
}

// Execute runs the full pipeline and returns the finished report.
//
// The exact and sampling simulations are independent of each other and run
// concurrently; both only read the immutable circuit variants and are joined
// before fidelity estimation. A sampling failure is fatal; an exact-state
// failure degrades to the documented fallback fidelity.
func (s *Service) Execute(ctx context.Context, req Request) (*report.Report, error) {
	desc, shots, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	measured, err := circuit.Build(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to build circuit: %w", err)
	}
	unmeasured := measured.Unmeasured()

	s.log.Info().
		Str("label", req.Label).
		Int("qubits", desc.Qubits).
		Int("nodes", len(desc.Groups)).
		Str("schedule", string(desc.Schedule)).
		Int("shots", shots).
		Msg("Starting benchmark run")

	// Exact and sampled simulation in parallel; join both before deriving metrics
	type exactResult struct {
		state *simulator.StateVector
		err   error
	}
	type sampleResult struct {
		counts simulator.Counts
		err    error
	}
	exactCh := make(chan exactResult, 1)
	sampleCh := make(chan sampleResult, 1)

	go func() {
		state, err := s.exact.Run(unmeasured)
		exactCh <- exactResult{state: state, err: err}
	}()
	go func() {
		counts, err := s.newSampler(req.Seed).Run(measured, shots)
		sampleCh <- sampleResult{counts: counts, err: err}
	}()

	exactRes := <-exactCh
	sampleRes := <-sampleCh

	if sampleRes.err != nil {
		// No meaningful report exists without a count distribution
		return nil, fmt.Errorf("sampling simulation failed: %w", sampleRes.err)
	}
	state := exactRes.state
	if exactRes.err != nil {
		s.log.Warn().Err(exactRes.err).Msg("Exact simulation failed, falling back to theoretical fidelity")
		state = nil
	}

	fidelity, err := s.estimator.Estimate(ctx, state, sampleRes.counts)
	if err != nil {
		return nil, fmt.Errorf("fidelity estimation failed: %w", err)
	}

	correlations, err := analysis.Correlations(sampleRes.counts, desc.Groups)
	if err != nil {
		return nil, fmt.Errorf("correlation analysis failed: %w", err)
	}

	composite := analysis.CompositeIndex(fidelity.Used, correlations)

	rep, err := report.Assemble(report.AssembleInput{
		RunLabel:     req.Label,
		Descriptor:   desc,
		Shots:        shots,
		Counts:       sampleRes.counts,
		Fidelity:     fidelity,
		Correlations: correlations,
		Composite:    composite,
		CircuitQASM:  measured.Serialize(),
	})
	if err != nil {
		return nil, fmt.Errorf("report assembly failed: %w", err)
	}

	// Anchoring runs strictly after assembly and only appends the ledger
	// reference; failure leaves the anchor fields absent.
	s.anchorReport(ctx, rep)

	if s.sink != nil {
		if err := s.sink.Save(rep); err != nil {
			return nil, fmt.Errorf("failed to persist report: %w", err)
		}
	}

	s.log.Info().
		Str("run_id", rep.RunID).
		Str("status", rep.Status).
		Float64("fidelity", rep.Fidelity).
		Float64("composite_index", rep.CompositeIndex).
		Bool("anchored", rep.Anchored).
		Msg("Benchmark run finished")

	return rep, nil
}

// resolve applies service defaults and builds the validated topology.
func (s *Service) resolve(req Request) (*topology.Descriptor, int, error) {
	groupSize := req.GroupSize
	if groupSize == 0 {
		groupSize = s.cfg.DefaultGroupSize
	}
	if groupSize < 1 {
		return nil, 0, fmt.Errorf("group size must be positive, got %d", groupSize)
	}

	names := req.NodeNames
	if len(names) == 0 {
		if req.Qubits%groupSize != 0 {
			return nil, 0, fmt.Errorf("%d qubits do not divide into groups of %d", req.Qubits, groupSize)
		}
		names = topology.DefaultNodeNames(req.Qubits / groupSize)
	}

	schedule := req.Schedule
	if schedule == "" {
		schedule = topology.ScheduleCascade
	}

	desc, err := topology.New(req.Qubits, names, groupSize, schedule)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid run request: %w", err)
	}

	shots := req.Shots
	if shots == 0 {
		shots = s.cfg.DefaultShots
	}

	return desc, shots, nil
}

// anchorReport submits the report's metric digest to the ledger. Best-effort:
// any failure is logged and the report keeps its placeholder anchor fields.
func (s *Service) anchorReport(ctx context.Context, rep *report.Report) {
	if s.anchorer == nil {
		return
	}

	payload := map[string]interface{}{
		"run_id":          rep.RunID,
		"fidelity":        rep.Fidelity,
		"composite_index": rep.CompositeIndex,
		"status":          rep.Status,
		"qubits":          rep.Qubits,
		"timestamp":       rep.Timestamp.Format(time.RFC3339),
	}

	entry, err := s.anchorer.Submit(ctx, rep.RunLabel, payload)
	if err != nil {
		s.log.Warn().Err(err).Str("run_id", rep.RunID).Msg("Anchoring failed, report kept without ledger reference")
		return
	}
	rep.AttachAnchor(entry.EntryHash, entry.OTSProof)
}
