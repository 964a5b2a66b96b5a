package database

import (
	"context"
	"database/sql"
	"fmt"

	"sfm/internal/database/migrations"
	"sfm/internal/sfm"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase stores backup pass history in SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

var _ sfm.PassHistory = (*SQLiteDatabase)(nil)

// NewSQLiteDatabase opens the database at path (or ":memory:") and brings
// its schema up to date.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection. A single open
// connection keeps ":memory:" databases from splitting across the pool and
// serializes writers.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// RecordPass inserts a finished pass.
func (s *SQLiteDatabase) RecordPass(rec *sfm.PassRecord) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO backup_passes
			(id, base_path, backup_root, trigger, started_at, finished_at, copied, skipped, failed, status, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.BasePath, rec.BackupRoot, rec.Trigger,
		rec.StartedAt.UTC(), rec.FinishedAt.UTC(),
		rec.Copied, rec.Skipped, rec.Failed, rec.Status, rec.Message,
	)
	if err != nil {
		return fmt.Errorf("inserting backup pass: %w", err)
	}
	return nil
}

// ListPasses returns up to limit passes, newest first. A non-positive limit
// returns every pass.
func (s *SQLiteDatabase) ListPasses(limit int) ([]*sfm.PassRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, base_path, backup_root, trigger, started_at, finished_at, copied, skipped, failed, status, message
		FROM backup_passes
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing backup passes: %w", err)
	}
	defer rows.Close()

	var passes []*sfm.PassRecord
	for rows.Next() {
		rec := &sfm.PassRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.BasePath, &rec.BackupRoot, &rec.Trigger,
			&rec.StartedAt, &rec.FinishedAt,
			&rec.Copied, &rec.Skipped, &rec.Failed, &rec.Status, &rec.Message,
		); err != nil {
			return nil, fmt.Errorf("scanning backup pass: %w", err)
		}
		passes = append(passes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating backup passes: %w", err)
	}
	return passes, nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}
