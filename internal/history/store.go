// Package history records the command lines entered into a communicator.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded command line
type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
	Line      string    `json:"line"`
}

// Store persists command history. Recent returns newest first, All returns
// oldest first.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, n int) ([]Entry, error)
	All(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
	Close() error
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
	// Limit bounds the number of kept entries; 0 keeps everything
	Limit int
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:  "./data/history.db",
		Limit: 1000,
	}
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db    *sql.DB
	limit int
	mu    sync.Mutex
}

// NewSQLiteStore opens or creates the history database
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, limit: cfg.Limit}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		line TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a line and prunes the oldest entries beyond the limit.
// Blank lines are ignored.
func (s *SQLiteStore) Append(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.Line) == "" {
		return nil
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history (timestamp, source, line) VALUES (?, ?, ?)`,
		entry.Timestamp, entry.Source, entry.Line); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	if s.limit > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM history WHERE id NOT IN (
				SELECT id FROM history ORDER BY id DESC LIMIT ?
			)`, s.limit); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns up to n entries, newest first
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.query(ctx, `SELECT id, timestamp, source, line FROM history ORDER BY id DESC LIMIT ?`, n)
}

// All returns every entry, oldest first
func (s *SQLiteStore) All(ctx context.Context) ([]Entry, error) {
	return s.query(ctx, `SELECT id, timestamp, source, line FROM history ORDER BY id ASC`)
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...interface{}) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Source, &e.Line); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes every entry
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore implements Store in memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
	limit   int
}

// NewMemoryStore creates an in-memory store keeping at most limit entries;
// 0 keeps everything
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{limit: limit, nextID: 1}
}

// Append records a line. Blank lines are ignored.
func (m *MemoryStore) Append(_ context.Context, entry Entry) error {
	if strings.TrimSpace(entry.Line) == "" {
		return nil
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = m.nextID
	m.nextID++
	m.entries = append(m.entries, entry)
	if m.limit > 0 && len(m.entries) > m.limit {
		m.entries = append([]Entry(nil), m.entries[len(m.entries)-m.limit:]...)
	}
	return nil
}

// Recent returns up to n entries, newest first
func (m *MemoryStore) Recent(_ context.Context, n int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n > len(m.entries) {
		n = len(m.entries)
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= len(m.entries)-n; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// All returns every entry, oldest first
func (m *MemoryStore) All(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.entries...), nil
}

// Clear deletes every entry
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }

// Lines extracts the command lines of entries
func Lines(entries []Entry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line
	}
	return lines
}
