// Package storage persists completed strip runs for audit: the pillar
// schedules that came out of a strip, keyed by a generated run ID. It does
// not persist or reconstruct the curves themselves.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meenmo/dualstrip/stripper"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database connection and implements stripper.Recorder.
type Store struct {
	db *sql.DB
}

var _ stripper.Recorder = (*Store)(nil)

// Open opens (or creates) the SQLite database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	version := 0
	s.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS strip_run (
				run_id       TEXT PRIMARY KEY,
				now_date     TEXT NOT NULL,
				generated_at TEXT NOT NULL,
				disc_dates   TEXT NOT NULL,
				disc_abs     TEXT NOT NULL,
				idx_dates    TEXT NOT NULL,
				idx_abs      TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_strip_run_generated ON strip_run(generated_at);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

// Save implements stripper.Recorder: it assigns a fresh run ID and persists
// the result's pillar schedule.
func (s *Store) Save(ctx context.Context, result *stripper.Result) (string, error) {
	runID := uuid.New().String()

	discDates, err := marshalDates(result.DiscDates)
	if err != nil {
		return "", fmt.Errorf("storage: marshal disc dates: %w", err)
	}
	idxDates, err := marshalDates(result.IdxDates)
	if err != nil {
		return "", fmt.Errorf("storage: marshal idx dates: %w", err)
	}
	discAbs, err := json.Marshal(result.DiscAbs)
	if err != nil {
		return "", fmt.Errorf("storage: marshal disc abscissa: %w", err)
	}
	idxAbs, err := json.Marshal(result.IdxAbs)
	if err != nil {
		return "", fmt.Errorf("storage: marshal idx abscissa: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO strip_run (run_id, now_date, generated_at, disc_dates, disc_abs, idx_dates, idx_abs)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		result.NowDate.Format(time.RFC3339),
		time.Now().Format(time.RFC3339),
		string(discDates), string(discAbs), string(idxDates), string(idxAbs),
	)
	if err != nil {
		return "", fmt.Errorf("storage: insert strip_run: %w", err)
	}
	return runID, nil
}

// Run is the persisted pillar schedule for one strip, as returned by Load.
type Run struct {
	RunID       string
	NowDate     time.Time
	GeneratedAt time.Time
	DiscDates   []time.Time
	DiscAbs     []float64
	IdxDates    []time.Time
	IdxAbs      []float64
}

// Load retrieves a previously saved run by ID.
func (s *Store) Load(ctx context.Context, runID string) (*Run, error) {
	var nowDateStr, generatedAtStr, discDatesJSON, discAbsJSON, idxDatesJSON, idxAbsJSON string
	row := s.db.QueryRowContext(ctx, `
		SELECT now_date, generated_at, disc_dates, disc_abs, idx_dates, idx_abs
		FROM strip_run WHERE run_id = ?`, runID)
	if err := row.Scan(&nowDateStr, &generatedAtStr, &discDatesJSON, &discAbsJSON, &idxDatesJSON, &idxAbsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("storage: run %q not found", runID)
		}
		return nil, fmt.Errorf("storage: load run %q: %w", runID, err)
	}

	nowDate, err := time.Parse(time.RFC3339, nowDateStr)
	if err != nil {
		return nil, fmt.Errorf("storage: parse now_date: %w", err)
	}
	generatedAt, err := time.Parse(time.RFC3339, generatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("storage: parse generated_at: %w", err)
	}
	discDates, err := unmarshalDates(discDatesJSON)
	if err != nil {
		return nil, fmt.Errorf("storage: unmarshal disc dates: %w", err)
	}
	idxDates, err := unmarshalDates(idxDatesJSON)
	if err != nil {
		return nil, fmt.Errorf("storage: unmarshal idx dates: %w", err)
	}
	var discAbs, idxAbs []float64
	if err := json.Unmarshal([]byte(discAbsJSON), &discAbs); err != nil {
		return nil, fmt.Errorf("storage: unmarshal disc abscissa: %w", err)
	}
	if err := json.Unmarshal([]byte(idxAbsJSON), &idxAbs); err != nil {
		return nil, fmt.Errorf("storage: unmarshal idx abscissa: %w", err)
	}

	return &Run{
		RunID:       runID,
		NowDate:     nowDate,
		GeneratedAt: generatedAt,
		DiscDates:   discDates,
		DiscAbs:     discAbs,
		IdxDates:    idxDates,
		IdxAbs:      idxAbs,
	}, nil
}

func marshalDates(dates []time.Time) ([]byte, error) {
	ss := make([]string, len(dates))
	for i, d := range dates {
		ss[i] = d.Format(time.RFC3339)
	}
	return json.Marshal(ss)
}

func unmarshalDates(raw string) ([]time.Time, error) {
	var ss []string
	if err := json.Unmarshal([]byte(raw), &ss); err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(ss))
	for i, s := range ss {
		d, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}
	return dates, nil
}
