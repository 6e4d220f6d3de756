// Package history persists the bounded search history and small UI
// preferences in a local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MaxTerms is the number of search terms kept.
const MaxTerms = 5

const schemaSQL = `
CREATE TABLE IF NOT EXISTS search_history (
	term       TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store is the SQLite-backed history and preference store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the history database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: creating directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: applying schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Add records a committed search term at the head of the history,
// de-duplicated by exact string match and trimmed to MaxTerms entries.
func (s *Store) Add(term string) error {
	if term == "" {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history: beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixNano()
	if _, err := tx.Exec(
		`INSERT INTO search_history (term, created_at) VALUES (?, ?)
		 ON CONFLICT(term) DO UPDATE SET created_at = excluded.created_at`,
		term, now,
	); err != nil {
		return fmt.Errorf("history: inserting term: %w", err)
	}

	if _, err := tx.Exec(
		`DELETE FROM search_history WHERE term NOT IN (
			SELECT term FROM search_history ORDER BY created_at DESC LIMIT ?
		 )`,
		MaxTerms,
	); err != nil {
		return fmt.Errorf("history: trimming history: %w", err)
	}

	return tx.Commit()
}

// Terms returns the history, newest first.
func (s *Store) Terms() ([]string, error) {
	rows, err := s.db.Query(`SELECT term FROM search_history ORDER BY created_at DESC LIMIT ?`, MaxTerms)
	if err != nil {
		return nil, fmt.Errorf("history: querying terms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var terms []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("history: scanning term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// SetPreference stores a small UI preference value under key.
func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("history: storing preference %q: %w", key, err)
	}
	return nil
}

// Preference returns the stored value for key, or "" when absent.
func (s *Store) Preference(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("history: reading preference %q: %w", key, err)
	}
	return value, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
