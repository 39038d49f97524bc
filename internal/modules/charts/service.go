// Package charts provides services for generating chart data from run reports.
package charts

import (
	"github.com/rs/zerolog"

	"github.com/quantalab/qbench/internal/report"
)

// HistogramPoint represents a single bar of an outcome histogram
type HistogramPoint struct {
	Bitstring string  `json:"bitstring"`
	Count     int     `json:"count"`
	Fraction  float64 `json:"fraction"` // share of total shots
}

// Service provides chart data operations
type Service struct {
	log zerolog.Logger
}

// NewService creates a new charts service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "charts").Logger(),
	}
}

// Histogram renders the report's top-outcome excerpt as histogram bars.
// Fractions are relative to the full shot count, so bars do not sum to 1
// when the excerpt truncates the distribution.
func (s *Service) Histogram(rep *report.Report) []HistogramPoint {
	points := make([]HistogramPoint, 0, len(rep.TopOutcomes))
	for _, outcome := range rep.TopOutcomes {
		points = append(points, HistogramPoint{
			Bitstring: outcome.Bitstring,
			Count:     outcome.Count,
			Fraction:  float64(outcome.Count) / float64(rep.Shots),
		})
	}
	return points
}
