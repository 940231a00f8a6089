package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Record is one generated message
type Record struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"commit_type"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
	Used      bool      `json:"used"`
}

// Stats summarises the history
type Stats struct {
	TotalGenerated int    `json:"total_generated"`
	TotalUsed      int    `json:"total_used"`
	MostCommonType string `json:"most_common_type"`
}

// NoType is reported as the most common type of an empty history
const NoType = "N/A"

// Save stores a generated message and returns its id
func (s *Store) Save(ctx context.Context, message, commitType string, files []string) (int64, error) {
	if files == nil {
		files = []string{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return 0, wrap("encode files", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO commits (message, commit_type, files, created_at)
		VALUES (?, ?, ?, ?)`,
		message, commitType, string(filesJSON), formatTime(s.now()),
	)
	if err != nil {
		return 0, wrap("save", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap("save", err)
	}
	return id, nil
}

// ListRecent returns up to limit records, newest first
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message, commit_type, files, created_at, used
		FROM commits
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, wrap("list", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, wrap("list", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", err)
	}
	return records, nil
}

// Get returns the record with the given id
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, message, commit_type, files, created_at, used
		FROM commits WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, wrap("get", err)
	}
	return rec, nil
}

// MarkUsed flags a record as committed. Unknown ids are ignored.
func (s *Store) MarkUsed(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE commits SET used = 1 WHERE id = ?`, id); err != nil {
		return wrap("mark used", err)
	}
	return nil
}

// Stats returns aggregate counts. Ties for the most common type go to
// the alphabetically first type.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{MostCommonType: NoType}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(used), 0) FROM commits`,
	).Scan(&stats.TotalGenerated, &stats.TotalUsed)
	if err != nil {
		return Stats{}, wrap("stats", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT commit_type FROM commits
		GROUP BY commit_type
		ORDER BY COUNT(*) DESC, commit_type ASC
		LIMIT 1`,
	).Scan(&stats.MostCommonType)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Stats{}, wrap("stats", err)
	}

	return stats, nil
}

// Clear deletes every record
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM commits`); err != nil {
		return wrap("clear", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec       Record
		filesJSON string
		createdAt string
		used      int
	)
	if err := sc.Scan(&rec.ID, &rec.Message, &rec.Type, &filesJSON, &createdAt, &used); err != nil {
		return nil, err
	}

	rec.Files = []string{}
	if filesJSON != "" {
		if err := json.Unmarshal([]byte(filesJSON), &rec.Files); err != nil {
			return nil, err
		}
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.Used = used != 0
	return &rec, nil
}
