// Package audit persists signing outcomes in a local SQLite database.
//
// Every sign attempt produces one row, successful or not, so the database
// doubles as a local record of what was shipped and with which keypair.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meigma/signet/core"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const busyTimeoutMS = 5000

// Store records signing outcomes in SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface implementation check.
var _ core.AuditRecorder = (*Store)(nil)

// Open opens the audit database at path, creating it if necessary.
//
// The database uses WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes). The schema is migrated automatically.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("audit: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMS)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Record appends one signing outcome. The entry's ID and CreatedAt are
// assigned by the store.
func (s *Store) Record(ctx context.Context, entry core.AuditEntry) error {
	signed, verified := 0, 0
	if entry.Signed {
		signed = 1
	}
	if entry.Verified {
		verified = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sign_events (path, digest, keypair_alias, signed, verified, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Path, entry.Digest, entry.KeypairAlias, signed, verified, entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("audit: record event: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.AuditEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, path, digest, keypair_alias, signed, verified, detail
		FROM sign_events
		ORDER BY id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []core.AuditEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: query event rows: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanEntry(rows *sql.Rows) (core.AuditEntry, error) {
	var (
		entry     core.AuditEntry
		createdAt string
		signed    int
		verified  int
	)
	err := rows.Scan(&entry.ID, &createdAt, &entry.Path, &entry.Digest,
		&entry.KeypairAlias, &signed, &verified, &entry.Detail)
	if err != nil {
		return entry, fmt.Errorf("audit: scan event: %w", err)
	}
	entry.Signed = signed != 0
	entry.Verified = verified != 0

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return entry, fmt.Errorf("audit: parse created_at %q: %w", createdAt, err)
	}
	entry.CreatedAt = ts
	return entry, nil
}
