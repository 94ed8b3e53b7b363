package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/assessrec/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	position       INTEGER NOT NULL,
	name           TEXT    NOT NULL UNIQUE,
	url            TEXT    NOT NULL DEFAULT '',
	remote_testing TEXT    NOT NULL DEFAULT 'No',
	adaptive       TEXT    NOT NULL DEFAULT 'No',
	duration       TEXT    NOT NULL DEFAULT '',
	test_type      TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_assessments_position ON assessments(position);
`

// SQLiteStore keeps the snapshot in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
		}
	}

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.AssessmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, url, remote_testing, adaptive, duration, test_type
		FROM assessments ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.AssessmentRecord
	for rows.Next() {
		var r model.AssessmentRecord
		var remote, adaptive string
		if err := rows.Scan(&r.Name, &r.URL, &remote, &adaptive, &r.Duration, &r.TestType); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		r.RemoteTestingSupport = model.Support(remote)
		r.AdaptiveSupport = model.Support(adaptive)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoSnapshot
	}
	return records, nil
}

// Save implements Store. The previous snapshot is replaced in one
// transaction; a duplicate name aborts the whole save.
func (s *SQLiteStore) Save(ctx context.Context, records []model.AssessmentRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM assessments`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assessments(position, name, url, remote_testing, adaptive, duration, test_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		if _, err = stmt.ExecContext(ctx, i, r.Name, r.URL,
			string(r.RemoteTestingSupport), string(r.AdaptiveSupport), r.Duration, r.TestType); err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
