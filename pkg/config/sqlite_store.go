package config

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"portwatch/pkg/logging"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps decisions and redirect history in
// ~/.portwatch/portwatch.db.
type SQLiteStore struct {
	db     *sql.DB
	mutex  sync.RWMutex
	dbPath string
}

// NewSQLiteStore creates and initializes the SQLite-backed store.
func NewSQLiteStore() (*SQLiteStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".portwatch")
	dbPath := filepath.Join(configDir, "portwatch.db")

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return NewSQLiteStoreAt(dbPath)
}

// NewSQLiteStoreAt opens the store at an explicit path (tests use a
// temp directory).
func NewSQLiteStoreAt(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.LogDebug("SQLite store initialized at: %s", dbPath)
	return store, nil
}

// initializeSchema creates the tables.
func (cs *SQLiteStore) initializeSchema() error {
	schema := `
	-- Remembered per-port choices ("ignore")
	CREATE TABLE IF NOT EXISTS port_decisions (
		port INTEGER PRIMARY KEY,
		decision TEXT NOT NULL
	);

	-- Audit of created redirects
	CREATE TABLE IF NOT EXISTS redirect_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		local_port INTEGER NOT NULL,
		target_port INTEGER NOT NULL,
		url TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_redirect_history_created ON redirect_history(created_at);
	`

	_, err := cs.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (cs *SQLiteStore) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}

// Decision Operations

// SetDecision remembers a choice for a port, replacing any previous
// one.
func (cs *SQLiteStore) SetDecision(port int, decision string) error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	_, err := cs.db.Exec(`INSERT INTO port_decisions (port, decision) VALUES (?, ?)
		ON CONFLICT(port) DO UPDATE SET decision = excluded.decision`, port, decision)
	if err != nil {
		return fmt.Errorf("failed to set decision for port %d: %w", port, err)
	}

	logging.LogDebug("Remembered decision %q for port %d", decision, port)
	return nil
}

// Decision returns the remembered choice for a port, if any.
func (cs *SQLiteStore) Decision(port int) (string, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	var decision string
	err := cs.db.QueryRow(`SELECT decision FROM port_decisions WHERE port = ?`, port).Scan(&decision)
	if err != nil {
		if err != sql.ErrNoRows {
			logging.LogError("Failed to query decision for port %d: %v", port, err)
		}
		return "", false
	}
	return decision, true
}

// ClearDecision forgets the choice for a port.
func (cs *SQLiteStore) ClearDecision(port int) error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	_, err := cs.db.Exec(`DELETE FROM port_decisions WHERE port = ?`, port)
	if err != nil {
		return fmt.Errorf("failed to clear decision for port %d: %w", port, err)
	}
	return nil
}

// Decisions returns every remembered choice.
func (cs *SQLiteStore) Decisions() (map[int]string, error) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	rows, err := cs.db.Query(`SELECT port, decision FROM port_decisions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var port int
		var decision string
		if err := rows.Scan(&port, &decision); err != nil {
			return nil, fmt.Errorf("failed to scan decision row: %w", err)
		}
		out[port] = decision
	}
	return out, rows.Err()
}

// Redirect History

// AddRedirect appends one audit entry.
func (cs *SQLiteStore) AddRedirect(localPort, targetPort int, url string) error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	_, err := cs.db.Exec(`INSERT INTO redirect_history (local_port, target_port, url, created_at)
		VALUES (?, ?, ?, ?)`, localPort, targetPort, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record redirect %d->%d: %w", localPort, targetPort, err)
	}

	logging.LogDebug("Recorded redirect %d -> %d (%s)", localPort, targetPort, url)
	return nil
}

// RedirectHistory returns the audit trail, newest first.
func (cs *SQLiteStore) RedirectHistory() ([]RedirectRecord, error) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	rows, err := cs.db.Query(`SELECT local_port, target_port, url, created_at
		FROM redirect_history ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query redirect history: %w", err)
	}
	defer rows.Close()

	var records []RedirectRecord
	for rows.Next() {
		var rec RedirectRecord
		var url sql.NullString
		if err := rows.Scan(&rec.LocalPort, &rec.TargetPort, &url, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan redirect row: %w", err)
		}
		rec.URL = url.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
