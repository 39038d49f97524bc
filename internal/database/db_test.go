package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportsDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "reports.db"),
		Profile: ProfileLedger,
		Name:    "reports",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewAndHealthCheck(t *testing.T) {
	db := newReportsDB(t)

	assert.Equal(t, "reports", db.Name())
	assert.Equal(t, ProfileLedger, db.Profile())
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestMigrateCreatesReportHistory(t *testing.T) {
	db := newReportsDB(t)
	require.NoError(t, db.Migrate())

	// Table and indexed columns exist after migration
	_, err := db.Exec(`
		INSERT INTO report_history
			(run_id, run_label, created_at, status, qubits, shots, schedule,
			 fidelity, composite_index, anchored, anchor_hash, report)
		VALUES ('r1', 'migration', '2026-08-01T00:00:00Z', 'COMPLETE', 4, 100, 'cascade',
			 0.99, 0.99, 0, '', x'00')`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM report_history`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newReportsDB(t)

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())
}

func TestMigrateSkipsUnknownDatabase(t *testing.T) {
	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "other.db"),
		Name: "other",
	})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Migrate())
}

func TestRunIDUniqueness(t *testing.T) {
	db := newReportsDB(t)
	require.NoError(t, db.Migrate())

	insert := `
		INSERT INTO report_history
			(run_id, run_label, created_at, status, qubits, shots, schedule,
			 fidelity, composite_index, anchored, anchor_hash, report)
		VALUES ('dup', 'x', '2026-08-01T00:00:00Z', 'COMPLETE', 4, 100, 'cascade',
			 0.9, 0.9, 0, '', x'00')`

	_, err := db.Exec(insert)
	require.NoError(t, err)
	_, err = db.Exec(insert)
	assert.Error(t, err)
}

func TestWALCheckpoint(t *testing.T) {
	db := newReportsDB(t)
	require.NoError(t, db.Migrate())

	assert.NoError(t, db.WALCheckpoint("TRUNCATE"))
}

func TestBuildConnectionStringProfiles(t *testing.T) {
	ledger := buildConnectionString("/tmp/x.db", ProfileLedger)
	assert.Contains(t, ledger, "journal_mode(WAL)")
	assert.Contains(t, ledger, "synchronous(FULL)")

	standard := buildConnectionString("/tmp/x.db", ProfileStandard)
	assert.Contains(t, standard, "synchronous(NORMAL)")
}
