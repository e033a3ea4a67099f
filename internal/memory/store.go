// Package memory provides the per-agent memory log and the per-mission
// session cache, both SQLite-backed.
package memory

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry kinds. KindError entries get a scoring boost during retrieval.
const (
	KindResult    = "result"
	KindError     = "error"
	KindNote      = "note"
	KindChronicle = "chronicle"
)

// Entry is one record in an agent's append-only memory log. Entries are
// never updated; removal happens only through ClearAgent.
type Entry struct {
	ID        int64
	Agent     string
	Kind      string
	Content   string
	Tags      []string
	CreatedAt time.Time
}

// Store provides SQLite-backed storage for agent memories and the
// ephemeral session cache.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// DefaultDBPath returns the path to the conclave memory database under
// the XDG data directory.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "conclave", "memory.db")
}

// Open opens the memory database at the given path, creating parent
// directories as needed. WAL mode is enabled for concurrent reads.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &Store{db: conn, dbPath: dbPath}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// migrate creates the tables and indexes if they don't exist.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS memories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			agent TEXT NOT NULL,
			kind TEXT NOT NULL,
			content TEXT NOT NULL,
			tags TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_memories_agent ON memories(agent);
		CREATE TABLE IF NOT EXISTS session_cache (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// Append adds one entry to an agent's memory log.
func (s *Store) Append(agent, kind, content string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO memories (agent, kind, content, tags, created_at) VALUES (?, ?, ?, ?, ?)",
		agent, kind, content, strings.Join(tags, ","), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("append memory: %w", err)
	}
	return nil
}

// ListRecent returns an agent's most recent entries, newest first.
func (s *Store) ListRecent(agent string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id, agent, kind, content, tags, created_at FROM memories WHERE agent = ? ORDER BY id DESC LIMIT ?",
		agent, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// listAll returns every entry for an agent, oldest first. Used by the
// retrieval scorer.
func (s *Store) listAll(agent string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id, agent, kind, content, tags, created_at FROM memories WHERE agent = ? ORDER BY id ASC",
		agent,
	)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ClearAgent removes an agent's entire memory log. This is the only way
// entries leave the store.
func (s *Store) ClearAgent(agent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM memories WHERE agent = ?", agent)
	if err != nil {
		return fmt.Errorf("clear agent memory: %w", err)
	}
	return nil
}

// PutCache stores a session cache value.
func (s *Store) PutCache(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO session_cache (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put cache: %w", err)
	}
	return nil
}

// GetCache returns a session cache value, or empty string if absent.
func (s *Store) GetCache(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM session_cache WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get cache: %w", err)
	}
	return value, nil
}

// ResetSession wipes the session cache. Called at mission start so cache
// entries are valid for exactly one mission.
func (s *Store) ResetSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM session_cache"); err != nil {
		return fmt.Errorf("reset session cache: %w", err)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var tags, createdAt string
		if err := rows.Scan(&e.ID, &e.Agent, &e.Kind, &e.Content, &tags, &createdAt); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		if tags != "" {
			e.Tags = strings.Split(tags, ",")
		}
		if t, err := parseTime(createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
