// Package anchor provides the client for the external append-only anchoring
// ledger. Anchoring is best-effort enrichment: a failed submission never
// discards an already-computed report.
package anchor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Entry is the ledger's reference to one anchored payload.
type Entry struct {
	EntryHash string `json:"entry_hash"`
	OTSProof  string `json:"ots_proof,omitempty"`
}

// Client submits report digests to the anchoring ledger.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates an anchoring client for the given ledger endpoint.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log.With().Str("client", "anchor").Logger(),
	}
}

// submitRequest is the wire format of an anchoring submission. The digest is
// computed client-side over the canonical JSON payload so the ledger entry is
// verifiable without trusting transport.
type submitRequest struct {
	RunLabel string                 `json:"run_label"`
	Digest   string                 `json:"digest"`
	Payload  map[string]interface{} `json:"payload"`
}

type submitResponse struct {
	Success bool  `json:"success"`
	Entry   Entry `json:"entry"`
}

// Submit anchors the payload under the given run label and returns the ledger
// entry. Any transport or ledger error is returned to the caller, which
// treats it as best-effort (report fields stay absent).
func (c *Client) Submit(ctx context.Context, runLabel string, payload map[string]interface{}) (Entry, error) {
	digest, err := payloadDigest(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to digest payload: %w", err)
	}

	body, err := json.Marshal(submitRequest{
		RunLabel: runLabel,
		Digest:   digest,
		Payload:  payload,
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to marshal anchor request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/anchor", bytes.NewReader(body))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to build anchor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Entry{}, fmt.Errorf("anchor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Entry{}, fmt.Errorf("anchor ledger returned status %d", resp.StatusCode)
	}

	var result submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Entry{}, fmt.Errorf("failed to parse anchor response: %w", err)
	}
	if !result.Success {
		return Entry{}, fmt.Errorf("anchor ledger rejected submission for %q", runLabel)
	}
	if result.Entry.EntryHash == "" {
		return Entry{}, fmt.Errorf("anchor ledger returned empty entry hash")
	}

	c.log.Info().
		Str("run_label", runLabel).
		Str("entry_hash", result.Entry.EntryHash).
		Msg("Report anchored")

	return result.Entry, nil
}

// payloadDigest returns the hex SHA-256 of the payload's JSON encoding.
// encoding/json sorts map keys, so the digest is canonical for map payloads.
func payloadDigest(payload map[string]interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
