// Package correction provides the client for the optional external
// error-correction metrics service. The service rescales exact fidelity using
// its stability and error-rate estimates; when it is unreachable the fidelity
// estimator substitutes the documented defaults instead.
package correction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbench/internal/analysis"
)

// Client implements analysis.CorrectionProvider against an HTTP service.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a correction client for the given service endpoint.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "correction").Logger(),
	}
}

type correctRequest struct {
	Fidelity float64 `json:"fidelity"`
}

type correctResponse struct {
	Fidelity  float64 `json:"fidelity"`
	Stability float64 `json:"stability"`
	ErrorRate float64 `json:"error_rate"`
}

// Correct submits the exact fidelity and returns the corrected metrics.
func (c *Client) Correct(ctx context.Context, exactFidelity float64) (analysis.CorrectionResult, error) {
	body, err := json.Marshal(correctRequest{Fidelity: exactFidelity})
	if err != nil {
		return analysis.CorrectionResult{}, fmt.Errorf("failed to marshal correction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/correct", bytes.NewReader(body))
	if err != nil {
		return analysis.CorrectionResult{}, fmt.Errorf("failed to build correction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return analysis.CorrectionResult{}, fmt.Errorf("correction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return analysis.CorrectionResult{}, fmt.Errorf("correction service returned status %d", resp.StatusCode)
	}

	var result correctResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return analysis.CorrectionResult{}, fmt.Errorf("failed to parse correction response: %w", err)
	}

	c.log.Debug().
		Float64("exact", exactFidelity).
		Float64("corrected", result.Fidelity).
		Float64("stability", result.Stability).
		Msg("Fidelity corrected")

	return analysis.CorrectionResult{
		Fidelity:  result.Fidelity,
		Stability: result.Stability,
		ErrorRate: result.ErrorRate,
	}, nil
}
