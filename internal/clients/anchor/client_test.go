package anchor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitSuccess(t *testing.T) {
	var received submitRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/anchor", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(submitResponse{
			Success: true,
			Entry:   Entry{EntryHash: "entry-hash-1", OTSProof: "ots-proof-1"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	payload := map[string]interface{}{"run_id": "abc", "fidelity": 0.99}

	entry, err := client.Submit(context.Background(), "test-run", payload)
	require.NoError(t, err)

	assert.Equal(t, "entry-hash-1", entry.EntryHash)
	assert.Equal(t, "ots-proof-1", entry.OTSProof)
	assert.Equal(t, "test-run", received.RunLabel)

	// Digest is the SHA-256 of the canonical JSON payload
	canonical, err := json.Marshal(payload)
	require.NoError(t, err)
	sum := sha256.Sum256(canonical)
	assert.Equal(t, hex.EncodeToString(sum[:]), received.Digest)
}

func TestSubmitLedgerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(submitResponse{Success: false})
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())

	_, err := client.Submit(context.Background(), "rejected", map[string]interface{}{"x": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

func TestSubmitNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())

	_, err := client.Submit(context.Background(), "failed", map[string]interface{}{"x": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSubmitEmptyEntryHash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(submitResponse{Success: true})
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())

	_, err := client.Submit(context.Background(), "empty", map[string]interface{}{"x": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty entry hash")
}

func TestSubmitUnreachableLedger(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", zerolog.Nop())

	_, err := client.Submit(context.Background(), "unreachable", map[string]interface{}{"x": 1})
	assert.Error(t, err)
}
