package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/pkg/metrics"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - events, matches and sets tables
const currentSchemaVersion = 1

// SQLiteStore persists match data in a SQLite database. Records are stored
// as msgpack blobs so unknown payload fields survive.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and applies the schema.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	cfg := defaultSQLiteConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, cfg); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func applyPragmas(db *sql.DB, cfg sqliteConfig) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = " + cfg.synchronous,
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, e model.Event) (bool, error) {
	if err := validateEvent(e); err != nil {
		return false, err
	}
	start := time.Now()

	body, err := msgpack.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("encode event %s: %w", e.ID, err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (match_id, id, set_idx, type, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(match_id, id) DO NOTHING
	`, e.MatchID, e.ID, e.Set(), string(e.Type), body)
	if err != nil {
		return false, fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	if n == 0 {
		return false, nil
	}

	metrics.RecordStoreAppendLatency(float64(time.Since(start).Microseconds()) / 1000)
	s.updateCounts(ctx)
	return true, nil
}

func (s *SQLiteStore) updateCounts(ctx context.Context) {
	var events, matches int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT match_id) FROM events").Scan(&events, &matches)
	if err == nil {
		metrics.UpdateStoreCounts(events, matches)
	}
}

func (s *SQLiteStore) Events(ctx context.Context, matchID string) ([]model.Event, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000) }()

	rows, err := s.db.QueryContext(ctx,
		"SELECT body FROM events WHERE match_id = ? ORDER BY rowid", matchID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var e model.Event
		if err := msgpack.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) PutMatch(ctx context.Context, m model.Match) error {
	if m.ID == "" {
		return ErrInvalidMatch
	}
	body, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode match %s: %w", m.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches (id, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, m.ID, body, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert match %s: %w", m.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Match(ctx context.Context, matchID string) (model.Match, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, "SELECT body FROM matches WHERE id = ?", matchID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, ErrNotFound
	}
	if err != nil {
		return model.Match{}, fmt.Errorf("query match %s: %w", matchID, err)
	}
	var m model.Match
	if err := msgpack.Unmarshal(body, &m); err != nil {
		return model.Match{}, fmt.Errorf("decode match %s: %w", matchID, err)
	}
	return m, nil
}

func (s *SQLiteStore) PutSet(ctx context.Context, matchID string, set model.Set) (model.Set, error) {
	if err := validateSet(matchID, set); err != nil {
		return model.Set{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Set{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var body []byte
	err = tx.QueryRowContext(ctx,
		"SELECT body FROM sets WHERE match_id = ? AND idx = ?", matchID, set.Index).Scan(&body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return model.Set{}, fmt.Errorf("query set %d: %w", set.Index, err)
	default:
		var stored model.Set
		if err := msgpack.Unmarshal(body, &stored); err != nil {
			return model.Set{}, fmt.Errorf("decode set %d: %w", set.Index, err)
		}
		set = stored.Merge(set)
	}

	if body, err = msgpack.Marshal(set); err != nil {
		return model.Set{}, fmt.Errorf("encode set %d: %w", set.Index, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sets (match_id, idx, body) VALUES (?, ?, ?)
		ON CONFLICT(match_id, idx) DO UPDATE SET body = excluded.body
	`, matchID, set.Index, body)
	if err != nil {
		return model.Set{}, fmt.Errorf("upsert set %d: %w", set.Index, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Set{}, fmt.Errorf("commit: %w", err)
	}
	return set, nil
}

func (s *SQLiteStore) Sets(ctx context.Context, matchID string) ([]model.Set, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT body FROM sets WHERE match_id = ? ORDER BY idx", matchID)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	out := []model.Set{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		var set model.Set
		if err := msgpack.Unmarshal(body, &set); err != nil {
			return nil, fmt.Errorf("decode set: %w", err)
		}
		out = append(out, set)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Matches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM matches
		UNION SELECT match_id FROM events
		UNION SELECT match_id FROM sets
		ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0
	}
	return n
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
