package runs

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbench/internal/report"
	testingpkg "github.com/quantalab/qbench/internal/testing"
)

func testReport(runID, label string, fidelity float64) *report.Report {
	return &report.Report{
		RunID:          runID,
		RunLabel:       label,
		Timestamp:      time.Now().UTC(),
		Status:         report.StatusComplete,
		Qubits:         4,
		Shots:          1000,
		Schedule:       "cascade",
		ExactFidelity:  fidelity,
		RawFidelity:    fidelity,
		Fidelity:       fidelity,
		Stability:      0.95,
		ErrorRate:      0.05,
		CompositeIndex: fidelity,
		NodeCorrelations: map[string]float64{
			"node-1": 1.0,
			"node-2": 1.0,
		},
		TopOutcomes: []report.OutcomeCount{
			{Bitstring: "0000", Count: 520},
			{Bitstring: "1111", Count: 480},
		},
		CircuitQASM: "OPENQASM 2.0;\n",
	}
}

func TestRepositorySaveAndGet(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "reports")
	defer cleanup()

	repo := NewRepository(db.Conn())
	rep := testReport("run-1", "roundtrip", 0.98)
	rep.AttachAnchor("hash-1", "proof-1")

	require.NoError(t, repo.Save(rep))

	loaded, err := repo.Get("run-1")
	require.NoError(t, err)

	assert.Equal(t, rep.RunID, loaded.RunID)
	assert.Equal(t, rep.RunLabel, loaded.RunLabel)
	assert.Equal(t, rep.Status, loaded.Status)
	assert.Equal(t, rep.Qubits, loaded.Qubits)
	assert.Equal(t, rep.Shots, loaded.Shots)
	assert.InDelta(t, rep.Fidelity, loaded.Fidelity, 1e-12)
	assert.Equal(t, rep.NodeCorrelations, loaded.NodeCorrelations)
	assert.Equal(t, rep.TopOutcomes, loaded.TopOutcomes)
	assert.Equal(t, rep.CircuitQASM, loaded.CircuitQASM)
	assert.True(t, loaded.Anchored)
	assert.Equal(t, "hash-1", loaded.AnchorHash)
	assert.Equal(t, "proof-1", loaded.AnchorProof)
}

func TestRepositoryGetMissingRun(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "reports")
	defer cleanup()

	repo := NewRepository(db.Conn())

	_, err := repo.Get("no-such-run")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRepositoryDuplicateRunIDRejected(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "reports")
	defer cleanup()

	repo := NewRepository(db.Conn())
	require.NoError(t, repo.Save(testReport("run-dup", "first", 0.9)))

	err := repo.Save(testReport("run-dup", "second", 0.9))
	assert.Error(t, err, "run IDs are unique in the history log")
}

func TestRepositoryListNewestFirst(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "reports")
	defer cleanup()

	repo := NewRepository(db.Conn())

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rep := testReport("run-"+string(rune('a'+i)), "history", 0.9)
		rep.Timestamp = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Save(rep))
	}

	summaries, err := repo.List(10)
	require.NoError(t, err)

	require.Len(t, summaries, 3)
	assert.Equal(t, "run-c", summaries[0].RunID)
	assert.Equal(t, "run-a", summaries[2].RunID)
	assert.True(t, summaries[0].CreatedAt.After(summaries[1].CreatedAt))
}

func TestRepositoryListRespectsLimit(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "reports")
	defer cleanup()

	repo := NewRepository(db.Conn())
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(testReport("run-"+string(rune('0'+i)), "limited", 0.9)))
	}

	summaries, err := repo.List(2)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestRepositoryListEmptyHistory(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "reports")
	defer cleanup()

	repo := NewRepository(db.Conn())

	summaries, err := repo.List(0)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
