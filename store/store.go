// ABOUTME: SQLite-backed snapshot store acting as the capacity-limited key-value storage boundary.
// ABOUTME: Save is advisory (errors logged and swallowed); Load falls back to the default FileSet.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/scratchpen/scratchpen/pad"
)

// historyKeep is how many historical snapshots are retained per key.
const historyKeep = 20

// Store persists session snapshots in a SQLite database. The snapshots table
// holds the latest state per key; snapshot_history keeps a bounded trail of
// previous saves keyed by ULID so older states can be recovered by hand.
type Store struct {
	db *sql.DB
}

// Open opens or creates the snapshot database at the given path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snapshot_history (
			id TEXT PRIMARY KEY,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			saved_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_history_key ON snapshot_history(key, id);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the latest snapshot for the key. Persistence is advisory: any
// failure (quota, locked database, serialization) is logged and swallowed so
// it never becomes a user-visible error.
func (s *Store) Save(key string, fs *pad.FileSet, ui pad.UIState) {
	if err := s.save(key, fs, ui); err != nil {
		log.Printf("snapshot save for %s failed: %v", key, err)
	}
}

func (s *Store) save(key string, fs *pad.FileSet, ui pad.UIState) error {
	data, err := EncodeSnapshot(fs, ui)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	now := time.Now().UTC()
	ts := now.Format(time.RFC3339)

	_, err = s.db.Exec(
		`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, string(data), ts,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	id := ulid.Make()
	if _, err := s.db.Exec(
		`INSERT INTO snapshot_history (id, key, value, saved_at) VALUES (?, ?, ?, ?)`,
		id.String(), key, string(data), ts,
	); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	// Prune history beyond the retention limit. ULIDs sort by creation time,
	// so ordering by id keeps the newest rows.
	if _, err := s.db.Exec(
		`DELETE FROM snapshot_history
		 WHERE key = ? AND id NOT IN (
			SELECT id FROM snapshot_history WHERE key = ? ORDER BY id DESC LIMIT ?
		 )`,
		key, key, historyKeep,
	); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}

	return nil
}

// Load returns the latest snapshot for the key. A missing row or an
// unparseable payload yields the default FileSet and UI state with ok=false;
// parse failures are never propagated.
func (s *Store) Load(key string) (*pad.FileSet, pad.UIState, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return pad.DefaultFileSet(), pad.DefaultUIState(), false
	}
	if err != nil {
		log.Printf("snapshot load for %s failed: %v", key, err)
		return pad.DefaultFileSet(), pad.DefaultUIState(), false
	}

	fs, ui, err := DecodeSnapshot([]byte(value))
	if err != nil {
		log.Printf("snapshot for %s is corrupt, using defaults: %v", key, err)
		return pad.DefaultFileSet(), pad.DefaultUIState(), false
	}
	return fs, ui, true
}

// HistoryEntry is one retained historical snapshot.
type HistoryEntry struct {
	ID      string
	SavedAt string
}

// History lists up to n historical snapshot IDs for the key, newest first.
func (s *Store) History(key string, n int) ([]HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, saved_at FROM snapshot_history WHERE key = ? ORDER BY id DESC LIMIT ?`,
		key, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.SavedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
