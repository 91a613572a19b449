// Package store provides the SQLite-backed preference store that holds all
// application state as namespaced string values, most of them JSON blobs.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type kv struct {
	q querier
}

// Store is the process-wide preference store.
type Store struct {
	kv
	db   *sql.DB
	path string
}

// Tx is a batch of reads and writes committed atomically by Store.Update.
type Tx struct {
	kv
}

// Open opens or creates the preference database at the given path and
// brings its schema up to date.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	// Batches read before they write; immediate transactions take the write
	// lock up front so concurrent writers wait on busy_timeout instead of
	// failing the lock upgrade.
	db, err := sql.Open("sqlite", dbPath+"?_txlock=immediate&_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening prefs db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening prefs db: %w", err)
	}

	return &Store{kv: kv{q: db}, db: db, path: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Update runs fn inside a transaction. Nothing fn writes is visible
// unless it returns nil.
func (s *Store) Update(fn func(tx *Tx) error) error {
	sqlTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(&Tx{kv: kv{q: sqlTx}}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// Namespaces lists every namespace holding at least one key.
func (s *Store) Namespaces() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT namespace FROM prefs ORDER BY namespace")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

// GetString returns the value stored under ns/key and whether it exists.
func (k kv) GetString(ns, key string) (string, bool, error) {
	var value string
	err := k.q.QueryRow("SELECT value FROM prefs WHERE namespace = ? AND key = ?", ns, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s/%s: %w", ns, key, err)
	}
	return value, true, nil
}

// PutString stores value under ns/key, replacing any previous value.
func (k kv) PutString(ns, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := k.q.Exec(`INSERT OR REPLACE INTO prefs (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)`, ns, key, value, now)
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", ns, key, err)
	}
	return nil
}

// GetBool returns the boolean under ns/key, or def when unset or unparseable.
func (k kv) GetBool(ns, key string, def bool) (bool, error) {
	v, ok, err := k.GetString(ns, key)
	if err != nil || !ok {
		return def, err
	}
	b, perr := strconv.ParseBool(v)
	if perr != nil {
		return def, nil
	}
	return b, nil
}

// PutBool stores a boolean under ns/key.
func (k kv) PutBool(ns, key string, v bool) error {
	return k.PutString(ns, key, strconv.FormatBool(v))
}

// GetInt64 returns the integer under ns/key, or def when unset or unparseable.
func (k kv) GetInt64(ns, key string, def int64) (int64, error) {
	v, ok, err := k.GetString(ns, key)
	if err != nil || !ok {
		return def, err
	}
	n, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil {
		return def, nil
	}
	return n, nil
}

// PutInt64 stores an integer under ns/key.
func (k kv) PutInt64(ns, key string, v int64) error {
	return k.PutString(ns, key, strconv.FormatInt(v, 10))
}

// Remove deletes ns/key. Removing a missing key is not an error.
func (k kv) Remove(ns, key string) error {
	if _, err := k.q.Exec("DELETE FROM prefs WHERE namespace = ? AND key = ?", ns, key); err != nil {
		return fmt.Errorf("removing %s/%s: %w", ns, key, err)
	}
	return nil
}

// All returns every key/value pair of a namespace.
func (k kv) All(ns string) (map[string]string, error) {
	rows, err := k.q.Query("SELECT key, value FROM prefs WHERE namespace = ?", ns)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", ns, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

// Clear deletes every key of a namespace.
func (k kv) Clear(ns string) error {
	if _, err := k.q.Exec("DELETE FROM prefs WHERE namespace = ?", ns); err != nil {
		return fmt.Errorf("clearing %s: %w", ns, err)
	}
	return nil
}
