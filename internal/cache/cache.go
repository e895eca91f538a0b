// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists fetched literature records in a local SQLite
// database keyed by PMID, so repeat questions do not refetch records
// already seen. Records are stored as fetched, before any relevance
// judgment.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/answer-engine/internal/pubmed"
)

// Store is a PMID-keyed record cache backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS records (
		pmid TEXT PRIMARY KEY,
		record TEXT NOT NULL,
		fetched_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Get returns the cached records for ids and the ids that were not
// found, preserving the input order in both. A cache row that no longer
// decodes is treated as missing.
func (s *Store) Get(ctx context.Context, ids []string) ([]pubmed.Record, []string, error) {
	var (
		records []pubmed.Record
		missing []string
	)

	for _, id := range ids {
		var encoded string
		err := s.db.QueryRowContext(ctx,
			`SELECT record FROM records WHERE pmid = ?`, id,
		).Scan(&encoded)
		if err == sql.ErrNoRows {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("querying cache for %s: %w", id, err)
		}

		var rec pubmed.Record
		if err := json.Unmarshal([]byte(encoded), &rec); err != nil {
			missing = append(missing, id)
			continue
		}
		records = append(records, rec)
	}

	return records, missing, nil
}

// Put upserts the given records, keyed by PMID.
func (s *Store) Put(ctx context.Context, records []pubmed.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (pmid, record) VALUES (?, ?)
		 ON CONFLICT(pmid) DO UPDATE SET record=excluded.record, fetched_at=datetime('now')`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		encoded, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", rec.PMID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.PMID, string(encoded)); err != nil {
			return fmt.Errorf("upserting record %s: %w", rec.PMID, err)
		}
	}

	return tx.Commit()
}
