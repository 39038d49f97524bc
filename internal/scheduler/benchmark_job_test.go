package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbench/internal/analysis"
	"github.com/quantalab/qbench/internal/modules/runs"
	"github.com/quantalab/qbench/internal/report"
	"github.com/quantalab/qbench/internal/simulator"
)

type recordingSink struct {
	reports []*report.Report
}

func (s *recordingSink) Save(r *report.Report) error {
	s.reports = append(s.reports, r)
	return nil
}

func TestBenchmarkJobRunPersistsReport(t *testing.T) {
	log := zerolog.Nop()
	sink := &recordingSink{}
	service := runs.NewService(
		runs.Config{DefaultShots: 128, DefaultGroupSize: 2},
		simulator.NewExactSimulator(16, log),
		analysis.NewFidelityEstimator(nil, log),
		nil,
		sink,
		log,
	)

	seed := int64(13)
	job := NewBenchmarkJob(service, runs.Request{
		Label:    "scheduled-benchmark",
		Qubits:   4,
		Schedule: "cascade",
		Shots:    128,
		Seed:     &seed,
	}, log)

	job.Run()

	require.Len(t, sink.reports, 1)
	assert.Equal(t, "scheduled-benchmark", sink.reports[0].RunLabel)
	assert.Equal(t, 4, sink.reports[0].Qubits)
}

func TestBenchmarkJobRunSwallowsFailures(t *testing.T) {
	log := zerolog.Nop()
	sink := &recordingSink{}
	service := runs.NewService(
		runs.Config{DefaultShots: 128, DefaultGroupSize: 2},
		simulator.NewExactSimulator(16, log),
		analysis.NewFidelityEstimator(nil, log),
		nil,
		sink,
		log,
	)

	// Indivisible register makes the run fail before any simulation
	job := NewBenchmarkJob(service, runs.Request{
		Label:    "scheduled-benchmark",
		Qubits:   5,
		Schedule: "cascade",
	}, log)

	assert.NotPanics(t, job.Run, "a failed scheduled run must not stop the schedule")
	assert.Empty(t, sink.reports)
}

func TestBenchmarkJobName(t *testing.T) {
	job := NewBenchmarkJob(nil, runs.Request{}, zerolog.Nop())
	assert.Equal(t, "scheduled_benchmark", job.Name())
}
