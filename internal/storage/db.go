// ABOUTME: SQLite connection lifecycle with lazy, mutex-guarded initialization.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryDBName is the reserved store name selecting an ephemeral in-memory
// database, used by tests.
const MemoryDBName = ":memory:"

// timeFormat is RFC 3339 with a fixed nine-digit fraction so stored
// timestamps compare correctly as text. All values are stored in UTC.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// DB owns the single database handle shared by all repositories. The first
// caller to need the handle initializes it; concurrent callers block on the
// same mutex and reuse the result.
type DB struct {
	dbPath string

	mu sync.Mutex
	db *sql.DB
}

// New returns an uninitialized manager for the store at dbPath. The store is
// opened lazily on first use; call Initialize to open it eagerly.
func New(dbPath string) *DB {
	return &DB{dbPath: dbPath}
}

// Open creates a manager and initializes it immediately.
func Open(dbPath string) (*DB, error) {
	d := New(dbPath)
	if err := d.Initialize(); err != nil {
		return nil, err
	}
	return d, nil
}

// Initialize opens or creates the store and brings the schema up to date.
// Idempotent: a second call against a live handle returns immediately.
func (d *DB) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initLocked()
}

// conn returns the live handle, initializing it on first use. Exactly one
// caller performs initialization regardless of how many race here.
func (d *DB) conn() (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.initLocked(); err != nil {
		return nil, err
	}
	return d.db, nil
}

func (d *DB) initLocked() error {
	if d.db != nil {
		return nil
	}

	var db *sql.DB
	var err error

	if d.dbPath == MemoryDBName {
		db, err = sql.Open("sqlite", pragmaDSN(MemoryDBName))
		if err != nil {
			return fmt.Errorf("%w: open in-memory database: %v", ErrConnection, err)
		}
		// A pooled second connection would see its own empty database.
		db.SetMaxOpenConns(1)
	} else {
		dir := filepath.Dir(d.dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("%w: create data directory: %v", ErrConnection, err)
		}

		db, err = sql.Open("sqlite", pragmaDSN(d.dbPath))
		if err != nil {
			return fmt.Errorf("%w: open database: %v", ErrConnection, err)
		}

		if err := os.Chmod(d.dbPath, 0600); err != nil && !os.IsNotExist(err) {
			_ = db.Close()
			return fmt.Errorf("%w: set database permissions: %v", ErrConnection, err)
		}
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: initialize schema: %v", ErrConnection, err)
	}

	d.db = db
	return nil
}

// Close releases the handle. Calling Close on an already closed manager is a
// no-op; a subsequent Initialize or repository call reopens the store.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// SchemaVersion returns the highest recorded schema version, or 0 when the
// schema_version table is empty.
func (d *DB) SchemaVersion() (int, error) {
	db, err := d.conn()
	if err != nil {
		return 0, err
	}
	return currentVersion(db)
}

// VerifySchemaIntegrity reports whether every required table exists. It
// returns false rather than an error for missing tables, for use in
// non-fatal health checks.
func (d *DB) VerifySchemaIntegrity() (bool, error) {
	db, err := d.conn()
	if err != nil {
		return false, err
	}

	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`,
			table,
		).Scan(&name)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("check table %s: %w", table, err)
		}
	}
	return true, nil
}

// ClearAllData deletes every row from the data tables in one transaction.
// Schema version rows are kept so the catalog in force is unchanged.
func (d *DB) ClearAllData() error {
	db, err := d.conn()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearDataTables(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func clearDataTables(tx *sql.Tx) error {
	// Children before parents; foreign keys stay satisfied throughout.
	for _, table := range []string{"sets", "workout_exercises", "workout_sessions", "exercises"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gymlog")
}

// DefaultDBPath returns the default database path following XDG spec.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "gymlog.db")
}

// pragmaDSN appends the connection pragmas to the store path. foreign_keys
// and busy_timeout are per-connection settings, so they have to ride on the
// DSN where the driver applies them to every connection the pool opens, not
// just the first. Cascade and SET NULL behavior depend on this.
func pragmaDSN(path string) string {
	return path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err == nil {
		return t, nil
	}
	if t, err2 := time.Parse(time.RFC3339, s); err2 == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("malformed stored timestamp %q: %v", s, err)
}
