package stats

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned for an unknown run id
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded simulation run
type Run struct {
	ID        string
	Scenario  string
	Ticks     uint64
	StartedAt time.Time
	EndedAt   time.Time
	Metrics   []Metric
}

// Store keeps run reports in a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at dbPath and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		ticks INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		ended_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS run_metrics (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		value INTEGER NOT NULL,
		PRIMARY KEY (run_id, name),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// StartRun records the start of a run and returns it with a fresh id.
func (s *Store) StartRun(scenario string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Scenario:  scenario,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, scenario, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Scenario, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final tick count and metrics of a run.
func (s *Store) FinishRun(id string, ticks uint64, metrics []Metric) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE runs SET ticks = ?, ended_at = ? WHERE id = ?`, ticks, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish %s: %w", id, ErrRunNotFound)
	}
	for i, m := range metrics {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO run_metrics (run_id, seq, name, value) VALUES (?, ?, ?, ?)`,
			id, i, m.Name, m.Value,
		); err != nil {
			return fmt.Errorf("insert metric %s: %w", m.Name, err)
		}
	}
	return tx.Commit()
}

// GetRun returns a run with its metrics.
func (s *Store) GetRun(id string) (*Run, error) {
	var run Run
	var ended sql.NullTime
	err := s.db.QueryRow(
		`SELECT id, scenario, ticks, started_at, ended_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Scenario, &run.Ticks, &run.StartedAt, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if ended.Valid {
		run.EndedAt = ended.Time
	}
	if run.Metrics, err = s.metrics(id); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first, without metrics.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, scenario, ticks, started_at, ended_at FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var ended sql.NullTime
		if err := rows.Scan(&run.ID, &run.Scenario, &run.Ticks, &run.StartedAt, &ended); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ended.Valid {
			run.EndedAt = ended.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) metrics(id string) ([]Metric, error) {
	rows, err := s.db.Query(`SELECT name, value FROM run_metrics WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []Metric
	for rows.Next() {
		var m Metric
		if err := rows.Scan(&m.Name, &m.Value); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
