package meetinglog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// StatusScheduled is the only status the system produces.
const StatusScheduled = "Scheduled"

// DefaultPath is the default database file, relative to the working directory.
const DefaultPath = "meetings.db"

const schema = `CREATE TABLE IF NOT EXISTS meetings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT,
	participants TEXT,
	start_time TEXT,
	status TEXT,
	created_at TEXT
)`

// Record is one immutable meeting log entry.
type Record struct {
	ID           int64
	Title        string
	Participants string // comma-joined email list, may be empty
	StartTime    string // free-form text as the user supplied it
	Status       string
	CreatedAt    time.Time
}

// Store writes meeting records to a SQLite database file.
type Store struct {
	path string
}

// NewStore creates a store writing to the given database file. The file and
// schema are created lazily on first write.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema idempotently creates the meetings table if absent. It is safe
// to call before every write; Append does so itself.
func (s *Store) EnsureSchema(ctx context.Context) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return ensureSchema(ctx, db)
}

// Append inserts one record with a server-generated identity and the current
// UTC timestamp. Duplicate records for the same logical meeting are permitted.
// The inserted identity is returned.
func (s *Store) Append(ctx context.Context, rec Record) (int64, error) {
	db, err := s.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := ensureSchema(ctx, db); err != nil {
		return 0, err
	}

	if rec.Status == "" {
		rec.Status = StatusScheduled
	}
	createdAt := time.Now().UTC().Format(time.RFC3339)

	result, err := db.ExecContext(ctx,
		`INSERT INTO meetings (title, participants, start_time, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.Title, rec.Participants, rec.StartTime, rec.Status, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to append meeting record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read record identity: %w", err)
	}

	return id, nil
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open meeting log %s: %w", s.path, err)
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure meeting log schema: %w", err)
	}
	return nil
}
