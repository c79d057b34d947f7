// Package journal persists move outcomes so that a game's history, including
// rollbacks and corruption, can be read back after the fact.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

var ErrNotConfigured = errors.New("journal is not configured")

// Entry is one journaled event
type Entry struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"game_id"`
	EventType string    `json:"event_type"`
	Move      int       `json:"move,omitempty"`
	Side      string    `json:"side,omitempty"`
	Variant   string    `json:"variant,omitempty"`
	Actor     int       `json:"actor"`
	Kind      string    `json:"kind,omitempty"`
	Code      string    `json:"code,omitempty"`
	Step      string    `json:"step,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a SQLite-backed journal
type Store struct {
	db *sql.DB
}

// Open opens the journal database at path and applies the schema
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the SQLite connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one entry
func (s *Store) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	e.GameID = strings.TrimSpace(e.GameID)
	e.EventType = strings.TrimSpace(e.EventType)
	if e.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	if e.EventType == "" {
		return fmt.Errorf("event type is required")
	}
	if e.Payload == "" {
		e.Payload = "{}"
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO journal_entries (
	game_id,
	event_type,
	move_number,
	side,
	variant,
	actor,
	kind,
	code,
	step,
	reason,
	payload,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		e.GameID,
		e.EventType,
		e.Move,
		e.Side,
		e.Variant,
		e.Actor,
		e.Kind,
		e.Code,
		e.Step,
		e.Reason,
		e.Payload,
		e.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}
	return nil
}

// List returns a game's entries oldest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, gameID string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT
	id,
	game_id,
	event_type,
	move_number,
	side,
	variant,
	actor,
	kind,
	code,
	step,
	reason,
	payload,
	created_at
FROM journal_entries
WHERE game_id = ?
ORDER BY id ASC
LIMIT ?
`, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(
			&e.ID,
			&e.GameID,
			&e.EventType,
			&e.Move,
			&e.Side,
			&e.Variant,
			&e.Actor,
			&e.Kind,
			&e.Code,
			&e.Step,
			&e.Reason,
			&e.Payload,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}
