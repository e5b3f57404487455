package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/isdmx/questbox/protocol"

	_ "modernc.org/sqlite"
)

// DefaultLimit is used by Recent when the caller passes no positive limit.
const DefaultLimit = 20

// MaxLimit bounds a single Recent query.
const MaxLimit = 500

// timeLayout is fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Submission is one recorded execution.
type Submission struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	Code       string        `json:"code"`
	Kind       protocol.Kind `json:"kind"`
	Action     string        `json:"action,omitempty"`
	Message    string        `json:"message,omitempty"`
	Warning    string        `json:"warning,omitempty"`
	DurationMS int64         `json:"duration_ms"`
}

// Store records submissions in a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: an in-memory database exists per connection, and
	// SQLite serialises writers anyway.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores the outcome of executing code.
func (s *Store) Record(ctx context.Context, code string, outcome protocol.Outcome) error {
	var action string
	if outcome.Result != nil {
		action = outcome.Result.Action
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, created_at, code, kind, action, message, warning, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		s.now().UTC().Format(timeLayout),
		code,
		outcome.Kind.String(),
		action,
		outcome.Message,
		outcome.Warning,
		outcome.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

// Recent returns up to limit submissions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, code, kind, action, message, warning, duration_ms
		FROM submissions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]Submission, 0, limit)
	for rows.Next() {
		var (
			sub       Submission
			createdAt string
			kind      string
		)
		if err := rows.Scan(&sub.ID, &createdAt, &sub.Code, &kind, &sub.Action, &sub.Message, &sub.Warning, &sub.DurationMS); err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		sub.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		if err := sub.Kind.UnmarshalText([]byte(kind)); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Count returns the number of stored submissions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting submissions: %w", err)
	}
	return n, nil
}
