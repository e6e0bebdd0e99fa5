package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
)

// ErrStorageBusy is returned when the database stayed locked past the busy timeout.
var ErrStorageBusy = errors.New("storage busy")

// SQLiteRepositoryConfig holds configuration for the SQLite key/value repository.
type SQLiteRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/mailadm.db"`

	// BusyTimeout is how long a write waits for a lock held by another process
	BusyTimeout time.Duration `env:"BUSY_TIMEOUT" default:"5s"`
}

// SQLiteRepository implements Repository using SQLite as the storage backend.
type SQLiteRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepositoryFactory creates a factory function that returns a new SQLiteRepository.
// The factory function implements the RepositoryFactory type.
func SQLiteRepositoryFactory(cfg SQLiteRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewSQLiteRepository(ctx, cfg)
	}
}

// NewSQLiteRepository creates a new SQLiteRepository with the given configuration.
// It creates the parent directory and the schema if needed.
// Returns an error if database connection or initialization fails.
func NewSQLiteRepository(ctx context.Context, cfg SQLiteRepositoryConfig) (*SQLiteRepository, error) {
	log := logging.GetLogger("repo.kv.sqlite_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("mkdir all: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	// A single connection keeps the busy timeout pragma in effect for every statement.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds())); err != nil {
		db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := initializeDB(ctx, db); err != nil {
		db.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	log.DebugContext(ctx, "kv store opened")

	return &SQLiteRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT    PRIMARY KEY NOT NULL,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Get implements Repository.Get using SQLite.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("query value: %w", classify(err))
	}

	return value, true, nil
}

// GetMany implements Repository.GetMany using SQLite.
func (r *SQLiteRepository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))

	if len(keys) == 0 {
		return values, nil
	}

	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	//nolint:gosec
	rows, err := r.db.QueryContext(ctx,
		"SELECT key, value FROM kv WHERE key IN (?"+strings.Repeat(", ?", len(keys)-1)+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query values: %w", classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}

		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate values: %w", classify(err))
	}

	return values, nil
}

// SetMany implements Repository.SetMany using one SQLite transaction.
func (r *SQLiteRepository) SetMany(ctx context.Context, entries map[string]string) error {
	if err := validateEntries(entries); err != nil {
		return err
	}

	now := time.Now().Unix()

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for key, value := range entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, key, value, now); err != nil {
				return fmt.Errorf("upsert %q: %w", key, err)
			}
		}

		return nil
	})
}

// DeleteMany implements Repository.DeleteMany using one SQLite transaction.
func (r *SQLiteRepository) DeleteMany(ctx context.Context, keys ...string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
				return fmt.Errorf("delete %q: %w", key, err)
			}
		}

		return nil
	})
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "kv write failed", "error", err)
		}
	}()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", classify(err))
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", classify(err))
	}

	return nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

func classify(err error) error {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return errors.Join(ErrStorageBusy, err)
		default:
			break
		}
	}

	return err
}
