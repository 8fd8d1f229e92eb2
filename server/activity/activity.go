package activity

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// Activity kinds recorded by the download engine.
const (
	KindDownloadStarted   = "download_started"
	KindDownloadCompleted = "download_completed"
	KindDownloadFailed    = "download_failed"
)

// Entry is one recorded activity row.
type Entry struct {
	Id        int64     `json:"id"`
	Caller    string    `json:"caller"`
	Kind      string    `json:"kind"`
	URL       string    `json:"url"`
	Format    string    `json:"format"`
	Quality   string    `json:"quality"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is the activity log sink. Record is fire-and-forget: a
// failed insert is logged locally and swallowed, it must never fail
// or delay a download.
type Service struct {
	db *sql.DB
}

func New(path string) (*Service, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_activities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			caller TEXT,
			activity_type TEXT NOT NULL,
			url TEXT,
			format TEXT,
			quality TEXT,
			filename TEXT,
			status TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Service{db: db}, nil
}

func (s *Service) Record(caller, kind string, entry Entry) {
	_, err := s.db.Exec(`
		INSERT INTO user_activities (caller, activity_type, url, format, quality, filename, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		caller, kind, entry.URL, entry.Format, entry.Quality, entry.Filename, entry.Status,
	)
	if err != nil {
		slog.Warn("activity logging error", slog.Any("err", err))
	}
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, caller, activity_type, url, format, quality, filename, status, created_at
		FROM user_activities
		ORDER BY created_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Id, &e.Caller, &e.Kind, &e.URL, &e.Format, &e.Quality, &e.Filename, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Service) Close() error { return s.db.Close() }
