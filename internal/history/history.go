// Package history keeps a local record of successful submissions in a SQLite database.
package history

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/ubuntu/decorate"

	// SQLite driver.
	_ "modernc.org/sqlite"
)

// schemaVersion is the latest schema version. Bump it when adding migrations.
const schemaVersion = 1

// Record is one successful submission.
type Record struct {
	ID          string    `json:"id"`
	SaveName    string    `json:"saveName"`
	SavePath    string    `json:"savePath"`
	SnapshotID  string    `json:"snapshotId"`
	Link        string    `json:"link"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Store is the submission history.
type Store struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

type options struct {
	log *slog.Logger
	now func() time.Time
}

// Options represents an optional function to override Store default values.
type Options func(*options)

// WithLogger sets the logger of the store.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// Open opens, creating it if needed, the history database in dir.
func Open(dir string, args ...Options) (s *Store, err error) {
	defer decorate.OnError(&err, "could not open history")

	opts := options{
		log: slog.Default(),
		now: time.Now,
	}
	for _, opt := range args {
		opt(&opts)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := filepath.Join(dir, constants.HistoryFileName) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	opts.log.Debug("Opened history", "dir", dir)

	return &Store{db: db, log: opts.log, now: opts.now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add records r, setting its id and submission date.
func (s *Store) Add(ctx context.Context, r Record) (rec Record, err error) {
	defer decorate.OnError(&err, "could not record submission")

	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return Record{}, err
	}
	r.ID = id.String()
	r.SubmittedAt = now.UTC().Truncate(time.Millisecond)

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, save_name, save_path, snapshot_id, link, submitted_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.SaveName, r.SavePath, r.SnapshotID, r.Link, r.SubmittedAt.UnixMilli()); err != nil {
		return Record{}, err
	}
	s.log.Debug("Recorded submission", "id", r.ID, "save", r.SaveName, "snapshot", r.SnapshotID)
	return r, nil
}

// List returns up to limit records, newest first. A limit of 0 or less returns every record.
func (s *Store) List(ctx context.Context, limit int) (records []Record, err error) {
	defer decorate.OnError(&err, "could not list submissions")

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, save_name, save_path, snapshot_id, link, submitted_at FROM submissions
		ORDER BY submitted_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Latest returns the newest record of the save named saveName.
// ok is false when the save was never submitted.
func (s *Store) Latest(ctx context.Context, saveName string) (r Record, ok bool, err error) {
	defer decorate.OnError(&err, "could not get last submission of %s", saveName)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, save_name, save_path, snapshot_id, link, submitted_at FROM submissions
		WHERE save_name = ? ORDER BY submitted_at DESC, id DESC LIMIT 1`, saveName)
	r, err = scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

func scan(row interface{ Scan(...any) error }) (Record, error) {
	var r Record
	var at int64
	if err := row.Scan(&r.ID, &r.SaveName, &r.SavePath, &r.SnapshotID, &r.Link, &at); err != nil {
		return Record{}, err
	}
	r.SubmittedAt = time.UnixMilli(at).UTC()
	return r, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("failed to get user_version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS submissions (
		  id           TEXT PRIMARY KEY,
		  save_name    TEXT NOT NULL,
		  save_path    TEXT NOT NULL,
		  snapshot_id  TEXT NOT NULL,
		  link         TEXT NOT NULL,
		  submitted_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_submissions_save_name
		ON submissions(save_name, submitted_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
	}

	if version < schemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", schemaVersion)); err != nil {
			return fmt.Errorf("failed to set user_version: %w", err)
		}
	}
	return nil
}
