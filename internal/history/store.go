// Package history persists the pairs produced by matching runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/matchmaker/internal/participant"
	_ "modernc.org/sqlite"
)

// ErrNotConfigured is returned by operations on a nil or closed store.
var ErrNotConfigured = errors.New("history: store is not configured")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	input TEXT NOT NULL,
	proposers TEXT NOT NULL,
	participants INTEGER NOT NULL,
	stable INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS pairs (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	name_a TEXT NOT NULL,
	name_b TEXT NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY (run_id, name_a, name_b)
);
CREATE INDEX IF NOT EXISTS pairs_names ON pairs(name_a, name_b);
`

// Run describes one matching run to be recorded.
type Run struct {
	Input        string
	Proposers    string
	Participants int
	Stable       bool
	CreatedAt    time.Time
	Pairs        []Pair
}

// Pair is a matched pair identified by participant names.
type Pair struct {
	A     string
	B     string
	Score float64
}

// Store persists run history in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens the SQLite history database at path, creating the schema when needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordRun stores the run and its pairs in one transaction and returns the run id.
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, ErrNotConfigured
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (input, proposers, participants, stable, created_at) VALUES (?, ?, ?, ?, ?)`,
		strings.TrimSpace(run.Input), run.Proposers, run.Participants, boolToInt(run.Stable), toMillis(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, p := range run.Pairs {
		np := participant.NamePair{A: p.A, B: p.B}.Normalized()
		if np.A == "" || np.B == "" {
			return 0, fmt.Errorf("pair %q/%q: both names are required", p.A, p.B)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO pairs (run_id, name_a, name_b, score) VALUES (?, ?, ?, ?)`,
			runID, np.A, np.B, p.Score,
		); err != nil {
			return 0, fmt.Errorf("insert pair %s/%s: %w", np.A, np.B, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// MatchedPairs returns every distinct pair recorded by earlier runs.
func (s *Store) MatchedPairs(ctx context.Context) ([]participant.NamePair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, ErrNotConfigured
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT DISTINCT name_a, name_b FROM pairs ORDER BY name_a, name_b`)
	if err != nil {
		return nil, fmt.Errorf("query pairs: %w", err)
	}
	defer rows.Close()

	var pairs []participant.NamePair
	for rows.Next() {
		var p participant.NamePair
		if err := rows.Scan(&p.A, &p.B); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	return pairs, nil
}

// RunCount returns the number of recorded runs.
func (s *Store) RunCount(ctx context.Context) (int, error) {
	if s == nil || s.sqlDB == nil {
		return 0, ErrNotConfigured
	}
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
