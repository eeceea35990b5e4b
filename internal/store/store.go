// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/speakup/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = errors.New("store: session not found")

// Store wraps SQLite access for practice history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			total INTEGER NOT NULL,
			score INTEGER NOT NULL,
			difficulty INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			target TEXT NOT NULL,
			transcript TEXT NOT NULL,
			similarity REAL NOT NULL,
			passed INTEGER NOT NULL,
			difficulty INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_target ON attempts(target);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a new session row. EndedAt defaults to StartedAt
// until FinishSession is called.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) error {
	if rec.ID == "" {
		return errors.New("store: session id is required")
	}
	ended := rec.EndedAt
	if ended.IsZero() {
		ended = rec.StartedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, mode, started_at, ended_at, total, score, difficulty)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		string(rec.Mode),
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		ended.UTC().Format(time.RFC3339Nano),
		rec.Total,
		rec.Score,
		int(rec.Difficulty),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FinishSession records the final score and end time.
func (s *Store) FinishSession(ctx context.Context, id string, endedAt time.Time, score int, difficulty model.Difficulty) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, score = ?, difficulty = ? WHERE id = ?`,
		endedAt.UTC().Format(time.RFC3339Nano), score, int(difficulty), id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// InsertAttempt stores one evaluated attempt.
func (s *Store) InsertAttempt(ctx context.Context, a model.AttemptRecord) error {
	passed := 0
	if a.Passed {
		passed = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (session_id, target, transcript, similarity, passed, difficulty, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID,
		strings.ToLower(strings.TrimSpace(a.Target)),
		a.Transcript,
		a.Similarity,
		passed,
		int(a.Difficulty),
		a.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "s.mode = ?")
		args = append(args, string(cfg.Mode))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "s.ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	limit := -1
	if cfg.Last > 0 {
		limit = cfg.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT * FROM (
		SELECT s.id, s.mode, s.ended_at, s.score, s.total,
			COUNT(a.id) AS attempts,
			COALESCE(SUM(a.passed), 0) AS passed,
			COALESCE(SUM(a.similarity), 0) AS similarity_sum
		FROM sessions s
		LEFT JOIN attempts a ON a.session_id = s.id
		WHERE %s
		GROUP BY s.id
		ORDER BY s.ended_at DESC
		LIMIT ?
	) ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var mode, endedAt string
		if err := rows.Scan(&agg.SessionID, &mode, &endedAt, &agg.Score, &agg.Total, &agg.Attempts, &agg.Passed, &agg.SimilaritySum); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.Mode = model.Mode(mode)
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListWordAggregatesForSessions aggregates attempts per target word across sessions.
func (s *Store) ListWordAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.WordAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT target, SUM(passed) AS passed, SUM(1 - passed) AS failed,
		SUM(similarity) AS similarity_sum
		FROM attempts
		WHERE session_id IN (%s)
		GROUP BY target
		ORDER BY target`, strings.Join(placeholders, ","))
	return s.queryWordAggregates(ctx, query, args...)
}

// GetWeakWords aggregates word attempts over the most recent sessions of mode.
// An empty mode covers all sessions.
func (s *Store) GetWeakWords(ctx context.Context, window int, mode model.Mode) ([]model.WordAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR mode = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT a.target, SUM(a.passed) AS passed, SUM(1 - a.passed) AS failed,
		SUM(a.similarity) AS similarity_sum
	FROM attempts a
	JOIN recent_sessions r ON r.id = a.session_id
	GROUP BY a.target
	ORDER BY a.target`
	return s.queryWordAggregates(ctx, query, string(mode), string(mode), window)
}

func (s *Store) queryWordAggregates(ctx context.Context, query string, args ...any) ([]model.WordAggregate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.WordAggregate
	for rows.Next() {
		var agg model.WordAggregate
		if err := rows.Scan(&agg.Word, &agg.Passed, &agg.Failed, &agg.SimilaritySum); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
