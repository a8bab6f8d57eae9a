package settings

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"danmaku/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// KeyStyle holds the selected caption style key.
const KeyStyle = "danmakuStyle"

// ErrSchemaMismatch indicates the database was written by an incompatible build.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Entry is one stored setting.
type Entry struct {
	Key       string
	Value     string
	Revision  int64
	UpdatedAt time.Time
}

// Store manages settings persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the settings database under the configured state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.SettingsPath())
}

// OpenPath connects to the settings database at path, creating it when missing.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset settings)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Get returns the entry for key. A missing key yields nil without error.
func (s *Store) Get(ctx context.Context, key string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, value, revision, updated_at FROM settings WHERE key = ?`, key)
	var (
		entry   Entry
		updated string
	)
	err := row.Scan(&entry.Key, &entry.Value, &entry.Revision, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
		entry.UpdatedAt = ts
	}
	return &entry, nil
}

// Value returns the stored value for key and whether it exists.
func (s *Store) Value(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.Get(ctx, key)
	if err != nil || entry == nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Set stores value under key. Writing the stored value again leaves the
// revision untouched.
func (s *Store) Set(ctx context.Context, key, value string) (*Entry, error) {
	if key == "" {
		return nil, errors.New("setting key is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, revision, updated_at) VALUES (?, ?, 1, ?)
         ON CONFLICT(key) DO UPDATE SET
             value = excluded.value,
             revision = settings.revision + 1,
             updated_at = excluded.updated_at
         WHERE settings.value <> excluded.value`,
		key, value, now,
	)
	if err != nil {
		return nil, fmt.Errorf("set setting %s: %w", key, err)
	}
	return s.Get(ctx, key)
}

// Revision returns the change counter for key, or 0 when unset.
func (s *Store) Revision(ctx context.Context, key string) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT revision FROM settings WHERE key = ?`, key).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read revision %s: %w", key, err)
	}
	return rev, nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

// All lists every stored setting ordered by key.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, revision, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			updated string
		)
		if err := rows.Scan(&entry.Key, &entry.Value, &entry.Revision, &updated); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
			entry.UpdatedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
