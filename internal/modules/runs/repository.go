package runs

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/quantalab/qbench/internal/report"
)

// Repository is the append-only report history log. Completed reports are
// inserted once, after anchoring, and never updated.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a report history repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Summary is the indexed excerpt of one history row, used for listings
// without decoding the full report blob.
type Summary struct {
	RunID          string    `json:"run_id"`
	RunLabel       string    `json:"run_label"`
	CreatedAt      time.Time `json:"created_at"`
	Status         string    `json:"status"`
	Qubits         int       `json:"qubits"`
	Shots          int       `json:"shots"`
	Schedule       string    `json:"schedule"`
	Fidelity       float64   `json:"fidelity"`
	CompositeIndex float64   `json:"composite_index"`
	Anchored       bool      `json:"anchored"`
}

// Save appends a completed report to the history. The full report is stored
// as a msgpack blob beside the indexed metric columns.
func (r *Repository) Save(rep *report.Report) error {
	blob, err := msgpack.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", rep.RunID, err)
	}

	anchored := 0
	if rep.Anchored {
		anchored = 1
	}

	_, err = r.db.Exec(`
		INSERT INTO report_history
			(run_id, run_label, created_at, status, qubits, shots, schedule,
			 fidelity, composite_index, anchored, anchor_hash, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RunID,
		rep.RunLabel,
		rep.Timestamp.Format(time.RFC3339Nano),
		rep.Status,
		rep.Qubits,
		rep.Shots,
		rep.Schedule,
		rep.Fidelity,
		rep.CompositeIndex,
		anchored,
		rep.AnchorHash,
		blob,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report %s: %w", rep.RunID, err)
	}

	return nil
}

// Get returns the full report for a run ID, or sql.ErrNoRows when absent.
func (r *Repository) Get(runID string) (*report.Report, error) {
	var blob []byte
	err := r.db.QueryRow(`SELECT report FROM report_history WHERE run_id = ?`, runID).Scan(&blob)
	if err != nil {
		return nil, err
	}

	var rep report.Report
	if err := msgpack.Unmarshal(blob, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", runID, err)
	}
	return &rep, nil
}

// List returns the most recent run summaries, newest first.
func (r *Repository) List(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT run_id, run_label, created_at, status, qubits, shots, schedule,
		       fidelity, composite_index, anchored
		FROM report_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report history: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var createdAt string
		var anchored int
		if err := rows.Scan(&s.RunID, &s.RunLabel, &createdAt, &s.Status, &s.Qubits,
			&s.Shots, &s.Schedule, &s.Fidelity, &s.CompositeIndex, &anchored); err != nil {
			return nil, fmt.Errorf("failed to scan report summary: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			s.CreatedAt = ts
		}
		s.Anchored = anchored != 0
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
