// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists bibliography entries in a local SQLite database
// and fetches missing entries from a live catalog API.
//
// The catalog sits outside the resolution pipeline: `catalog fetch`
// populates the database over the network, and a resolve run only ever
// reads the flattened entries. That keeps matching and rewriting
// synchronous and side-effect-free.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/cite-engine/pkg/types"
)

const dbFile = "catalog.db"

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the catalog database at catalogDir/catalog.db,
// creating the schema if needed.
func NewStore(catalogDir string) (*Store, error) {
	if err := os.MkdirAll(catalogDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(catalogDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL UNIQUE,
			title TEXT,
			venue TEXT,
			year INTEGER,
			authors TEXT,
			identifiers TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_year ON entries(year)`,
		`CREATE TABLE IF NOT EXISTS fetch_cache (
			url TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Entries returns every catalog entry in insertion order, so index
// construction sees a stable source order across runs.
func (s *Store) Entries(ctx context.Context) ([]types.BibliographyEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, title, venue, year, authors, identifiers FROM entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []types.BibliographyEntry
	for rows.Next() {
		var e types.BibliographyEntry
		var authorsJSON, identifiersJSON string
		if err := rows.Scan(&e.Key, &e.Title, &e.Venue, &e.Year, &authorsJSON, &identifiersJSON); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if authorsJSON != "" {
			if err := json.Unmarshal([]byte(authorsJSON), &e.Authors); err != nil {
				return nil, fmt.Errorf("parsing authors for %s: %w", e.Key, err)
			}
		}
		if identifiersJSON != "" {
			if err := json.Unmarshal([]byte(identifiersJSON), &e.Identifiers); err != nil {
				return nil, fmt.Errorf("parsing identifiers for %s: %w", e.Key, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Keys returns the set of citation keys already present in the catalog.
func (s *Store) Keys(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys[k] = true
	}
	return keys, rows.Err()
}

// Upsert inserts or replaces entries by key inside one transaction.
func (s *Store) Upsert(ctx context.Context, entries []types.BibliographyEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (key, title, venue, year, authors, identifiers)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			title=excluded.title, venue=excluded.venue, year=excluded.year,
			authors=excluded.authors, identifiers=excluded.identifiers`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		authorsJSON, _ := json.Marshal(e.Authors)
		identifiersJSON, _ := json.Marshal(e.Identifiers)
		if _, err := stmt.ExecContext(ctx, e.Key, e.Title, e.Venue, e.Year,
			string(authorsJSON), string(identifiersJSON)); err != nil {
			return fmt.Errorf("upserting entry %s: %w", e.Key, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of entries in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// CachedResponse returns a previously stored API response body for url.
func (s *Store) CachedResponse(ctx context.Context, url string) ([]byte, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM fetch_cache WHERE url = ?`, url).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading fetch cache: %w", err)
	}
	return body, true, nil
}

// StoreResponse records an API response body for url.
func (s *Store) StoreResponse(ctx context.Context, url string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fetch_cache (url, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET body=excluded.body, fetched_at=excluded.fetched_at`,
		url, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing fetch cache: %w", err)
	}
	return nil
}
