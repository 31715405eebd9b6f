// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides an optional SQLite read-through cache for DOI
// resolutions and fetched BibTeX entries. The cache is strictly an
// optimization: every method is best-effort, and a failed lookup or write
// degrades to the uncached path.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/citemaster/pkg/types"
)

// Store caches pipeline lookups in a SQLite database.
type Store struct {
	db     *sql.DB
	expiry time.Duration

	// now is stubbed in expiry tests.
	now func() time.Time
}

// Open creates or opens the cache database at path. Entries older than
// expiryDays are treated as misses and overwritten on the next store.
func Open(path string, expiryDays int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if expiryDays <= 0 {
		expiryDays = 30
	}
	s := &Store{
		db:     db,
		expiry: time.Duration(expiryDays) * 24 * time.Hour,
		now:    time.Now,
	}

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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS resolutions (
			title_key TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bibtex (
			doi TEXT PRIMARY KEY,
			entry TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// GetRecord returns the cached record for a normalized title key. Expired or
// malformed rows are misses.
func (s *Store) GetRecord(titleKey string) (types.BibliographicRecord, bool) {
	var data string
	var createdAt int64
	err := s.db.QueryRow(
		`SELECT record, created_at FROM resolutions WHERE title_key = ?`, titleKey,
	).Scan(&data, &createdAt)
	if err != nil || s.expired(createdAt) {
		return types.BibliographicRecord{}, false
	}

	var rec types.BibliographicRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return types.BibliographicRecord{}, false
	}
	return rec, true
}

// PutRecord stores a resolved record under its normalized title key.
func (s *Store) PutRecord(titleKey string, rec types.BibliographicRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	s.db.Exec(
		`INSERT OR REPLACE INTO resolutions (title_key, record, created_at) VALUES (?, ?, ?)`,
		titleKey, string(data), s.now().Unix(),
	)
}

// GetBibTeX returns the cached BibTeX body for a DOI.
func (s *Store) GetBibTeX(doi string) (string, bool) {
	var entry string
	var createdAt int64
	err := s.db.QueryRow(
		`SELECT entry, created_at FROM bibtex WHERE doi = ?`, doi,
	).Scan(&entry, &createdAt)
	if err != nil || s.expired(createdAt) {
		return "", false
	}
	return entry, true
}

// PutBibTeX stores a fetched BibTeX body under its DOI.
func (s *Store) PutBibTeX(doi, body string) {
	s.db.Exec(
		`INSERT OR REPLACE INTO bibtex (doi, entry, created_at) VALUES (?, ?, ?)`,
		doi, body, s.now().Unix(),
	)
}

func (s *Store) expired(createdAt int64) bool {
	return s.now().Sub(time.Unix(createdAt, 0)) > s.expiry
}
