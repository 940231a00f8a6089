// Package history persists generated commit messages in SQLite.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrPersistence wraps every failure of the storage engine
	ErrPersistence = errors.New("history storage failure")

	// ErrInvalidLimit is returned for a non-positive list limit
	ErrInvalidLimit = errors.New("limit must be at least 1")

	// ErrRecordNotFound is returned by Get for an unknown id
	ErrRecordNotFound = errors.New("history record not found")
)

// timeLayout is fixed width so that text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed history of generated messages.
// It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating when needed) the database at path and migrates its schema
func Open(path string) (*Store, error) {
	// The driver splits its DSN at the first '?' and reads the rest as options
	if strings.Contains(path, "?") {
		return nil, fmt.Errorf("%w: history path must not contain '?': %s", ErrPersistence, path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create %s: %v", ErrPersistence, dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrPersistence, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %v", ErrPersistence, err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by other tools may use SQLite's CURRENT_TIMESTAMP format
		t, _ = time.Parse("2006-01-02 15:04:05", s)
	}
	return t.UTC()
}
