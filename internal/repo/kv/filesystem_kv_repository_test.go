//go:build integration || all

package kv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"

	. "github.com/mkrupp/mailosaurus-admin/internal/repo/kv"
)

func setupFileSystemTestRepo(t *testing.T) (*FileSystemRepository, string) {
	t.Helper()

	logging.Configure(context.TODO(), logging.LoggerConfig{
		OutputHandle: os.Stderr,
		Level:        "debug",
	}, "test")

	filename := filepath.Join(t.TempDir(), "nested", "kv.json")

	repo, err := NewFileSystemRepository(context.TODO(), FileSystemRepositoryConfig{Filename: filename})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	return repo, filename
}

func TestFileSystemRepository(t *testing.T) {
	t.Parallel()

	testRepositoryContract(t, func(t *testing.T) Repository {
		t.Helper()

		repo, _ := setupFileSystemTestRepo(t)

		return repo
	})
}

func TestFileSystemRepository_SharedDocument(t *testing.T) {
	t.Parallel()

	repo, filename := setupFileSystemTestRepo(t)

	if err := Set(context.TODO(), repo, "user_email", "admin@example.com"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	// A second handle on the same document sees the write.
	other, err := NewFileSystemRepository(context.TODO(), FileSystemRepositoryConfig{Filename: filename})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	value, ok, err := other.Get(context.TODO(), "user_email")
	if err != nil || !ok || value != "admin@example.com" {
		t.Errorf("want %q, got %q (ok=%v, err=%v)", "admin@example.com", value, ok, err)
	}

	if _, err := os.Stat(filename + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temporary file to be gone, stat err: %v", err)
	}
}

func TestFileSystemRepository_CorruptDocument(t *testing.T) {
	t.Parallel()

	repo, filename := setupFileSystemTestRepo(t)

	if err := os.WriteFile(filename, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}

	if _, _, err := repo.Get(context.TODO(), "user_email"); !errors.Is(err, ErrCorruptStore) {
		t.Errorf("want ErrCorruptStore, got %v", err)
	}
}
