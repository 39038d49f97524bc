package charts

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbench/internal/report"
)

func TestHistogramFromTopOutcomes(t *testing.T) {
	svc := NewService(zerolog.Nop())
	rep := &report.Report{
		Shots: 1000,
		TopOutcomes: []report.OutcomeCount{
			{Bitstring: "0000", Count: 520},
			{Bitstring: "1111", Count: 480},
		},
	}

	points := svc.Histogram(rep)
	require.Len(t, points, 2)

	assert.Equal(t, "0000", points[0].Bitstring)
	assert.Equal(t, 520, points[0].Count)
	assert.InDelta(t, 0.52, points[0].Fraction, 1e-12)
	assert.InDelta(t, 0.48, points[1].Fraction, 1e-12)
}

func TestHistogramTruncatedExcerptFractionsBelowOne(t *testing.T) {
	svc := NewService(zerolog.Nop())
	rep := &report.Report{
		Shots: 1000,
		TopOutcomes: []report.OutcomeCount{
			{Bitstring: "0101", Count: 300},
		},
	}

	points := svc.Histogram(rep)
	require.Len(t, points, 1)
	assert.InDelta(t, 0.3, points[0].Fraction, 1e-12)
}

func TestHistogramEmptyReport(t *testing.T) {
	svc := NewService(zerolog.Nop())

	points := svc.Histogram(&report.Report{Shots: 100})
	assert.Empty(t, points)
}
