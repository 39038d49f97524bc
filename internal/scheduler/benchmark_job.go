// Package scheduler provides the periodic benchmark job. The job re-runs a
// fixed reference topology on a cron schedule so the report history
// accumulates a comparable time series.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbench/internal/modules/runs"
)

// BenchmarkJob executes one configured benchmark run per trigger.
// Implements cron.Job.
type BenchmarkJob struct {
	service *runs.Service
	request runs.Request
	timeout time.Duration
	log     zerolog.Logger
}

// NewBenchmarkJob creates the periodic benchmark job.
func NewBenchmarkJob(service *runs.Service, request runs.Request, log zerolog.Logger) *BenchmarkJob {
	return &BenchmarkJob{
		service: service,
		request: request,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "scheduled_benchmark").Logger(),
	}
}

// Name returns the job name for logging and status endpoints.
func (j *BenchmarkJob) Name() string {
	return "scheduled_benchmark"
}

// Run executes the benchmark and logs the outcome. Errors are logged rather
// than propagated: a failed scheduled run must not stop the schedule.
func (j *BenchmarkJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	started := time.Now()
	rep, err := j.service.Execute(ctx, j.request)
	if err != nil {
		j.log.Error().Err(err).Msg("Scheduled benchmark run failed")
		return
	}

	j.log.Info().
		Str("run_id", rep.RunID).
		Str("status", rep.Status).
		Float64("composite_index", rep.CompositeIndex).
		Dur("duration", time.Since(started)).
		Msg("Scheduled benchmark run complete")
}
