package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage is the flat key-value persistence backing the scoreboard
// snapshot and the preference markers, scoped by page origin
type Storage struct {
	db *sql.DB
}

// NewStorage opens or creates the database and initializes the schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	// Initialize schema
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		origin TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (origin, key)
	);

	CREATE INDEX IF NOT EXISTS idx_kv_origin ON kv(origin);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Set inserts or overwrites a value for an origin-scoped key
func (s *Storage) Set(origin, key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (origin, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(origin, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = CURRENT_TIMESTAMP
	`, origin, key, value)

	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Get retrieves a value; the second return reports presence
func (s *Storage) Get(origin, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`
		SELECT value FROM kv WHERE origin = ? AND key = ?
	`, origin, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, true, nil
}

// Delete removes a key; deleting an absent key is not an error
func (s *Storage) Delete(origin, key string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE origin = ? AND key = ?", origin, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Origin binds the storage to one page origin
func (s *Storage) Origin(origin string) *OriginStore {
	return &OriginStore{storage: s, origin: origin}
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// OriginStore is a Storage view scoped to a single origin. It
// satisfies the session's flat key-value contract.
type OriginStore struct {
	storage *Storage
	origin  string
}

// Get retrieves a value for this origin
func (o *OriginStore) Get(key string) (string, bool, error) {
	return o.storage.Get(o.origin, key)
}

// Set overwrites a value for this origin
func (o *OriginStore) Set(key, value string) error {
	return o.storage.Set(o.origin, key, value)
}

// Delete removes a key for this origin
func (o *OriginStore) Delete(key string) error {
	return o.storage.Delete(o.origin, key)
}
