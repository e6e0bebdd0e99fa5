package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownDriver is returned when the configured storage driver does not exist.
	ErrUnknownDriver = errors.New("unknown kv driver")
	// ErrEmptyKey is returned when an entry is written without a key.
	ErrEmptyKey = errors.New("empty key")
)

const (
	DriverSQLite     = "sqlite"
	DriverFileSystem = "filesystem"
	DriverMemory     = "memory"
)

// Repository defines the interface for durable key/value storage.
// Values are flat strings; structured values are encoded by the caller.
type Repository interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// GetMany returns the values of all given keys that exist.
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)

	// SetMany stores all entries in a single atomic write.
	// Either every entry is visible afterwards or none is.
	SetMany(ctx context.Context, entries map[string]string) error

	// DeleteMany removes all given keys in a single atomic write.
	// Missing keys are ignored.
	DeleteMany(ctx context.Context, keys ...string) error

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func(ctx context.Context) (Repository, error)

// Config selects and configures the storage driver.
type Config struct {
	// Driver is one of "sqlite", "filesystem" or "memory"
	Driver string `env:"DRIVER" default:"sqlite"`

	SQLite     SQLiteRepositoryConfig     `envPrefix:"SQLITE_"`
	FileSystem FileSystemRepositoryConfig `envPrefix:"FS_"`
}

// RepositoryFactoryFor returns the factory of the configured driver.
func RepositoryFactoryFor(cfg Config) (RepositoryFactory, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return SQLiteRepositoryFactory(cfg.SQLite), nil
	case DriverFileSystem:
		return FileSystemRepositoryFactory(cfg.FileSystem), nil
	case DriverMemory:
		return func(context.Context) (Repository, error) {
			return NewMemoryRepository(), nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func validateEntries(entries map[string]string) error {
	for key := range entries {
		if key == "" {
			return ErrEmptyKey
		}
	}

	return nil
}

// Set stores a single entry.
func Set(ctx context.Context, repo Repository, key, value string) error {
	return repo.SetMany(ctx, map[string]string{key: value})
}
