package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
)

// ErrCorruptStore is returned when the store document cannot be decoded.
var ErrCorruptStore = errors.New("corrupt kv store")

// FileSystemRepositoryConfig holds configuration for the filesystem key/value repository.
type FileSystemRepositoryConfig struct {
	// Filename is the JSON document holding all entries
	Filename string `env:"FILENAME" default:"var/storage/mailadm.json"`
}

// FileSystemRepositoryFactory creates a factory function that returns a new FileSystemRepository.
// The factory function implements the RepositoryFactory type.
func FileSystemRepositoryFactory(cfg FileSystemRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewFileSystemRepository(ctx, cfg)
	}
}

// FileSystemRepository implements Repository with a single JSON document on disk.
// Writes take an exclusive flock on a sibling lock file, rewrite the document
// into a temporary file and rename it over the original, so readers in other
// processes see either the old or the new document.
type FileSystemRepository struct {
	cfg FileSystemRepositoryConfig
	log logging.Logger
	m   *sync.RWMutex
}

var _ Repository = (*FileSystemRepository)(nil)

// NewFileSystemRepository creates a new FileSystemRepository with the given configuration.
// Returns an error if the storage directory cannot be created.
func NewFileSystemRepository(ctx context.Context, cfg FileSystemRepositoryConfig) (*FileSystemRepository, error) {
	log := logging.GetLogger("repo.kv.filesystem_repository").With(
		logging.Group("repo", "filename", cfg.Filename),
	)

	repo := &FileSystemRepository{
		cfg: cfg,
		log: log,
		m:   new(sync.RWMutex),
	}

	if err := repo.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}

	return repo, nil
}

func (fsRepo *FileSystemRepository) initStorage(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			fsRepo.log.ErrorContext(ctx, "init storage failed", "error", err)
		} else {
			fsRepo.log.DebugContext(ctx, "init storage")
		}
	}()

	if err := os.MkdirAll(filepath.Dir(fsRepo.cfg.Filename), 0o700); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	return nil
}

// Get implements Repository.Get.
func (fsRepo *FileSystemRepository) Get(ctx context.Context, key string) (string, bool, error) {
	values, err := fsRepo.GetMany(ctx, key)
	if err != nil {
		return "", false, err
	}

	value, ok := values[key]

	return value, ok, nil
}

// GetMany implements Repository.GetMany under a shared lock.
func (fsRepo *FileSystemRepository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	fsRepo.m.RLock()
	defer fsRepo.m.RUnlock()

	release, err := fsRepo.flock(ctx, syscall.LOCK_SH)
	if err != nil {
		return nil, fmt.Errorf("flock: %w", err)
	}
	defer release()

	document, err := fsRepo.readDocument()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	values := make(map[string]string, len(keys))

	for _, key := range keys {
		if value, ok := document[key]; ok {
			values[key] = value
		}
	}

	return values, nil
}

// SetMany implements Repository.SetMany.
func (fsRepo *FileSystemRepository) SetMany(ctx context.Context, entries map[string]string) error {
	if err := validateEntries(entries); err != nil {
		return err
	}

	return fsRepo.update(ctx, func(document map[string]string) {
		for key, value := range entries {
			document[key] = value
		}
	})
}

// DeleteMany implements Repository.DeleteMany.
func (fsRepo *FileSystemRepository) DeleteMany(ctx context.Context, keys ...string) error {
	return fsRepo.update(ctx, func(document map[string]string) {
		for _, key := range keys {
			delete(document, key)
		}
	})
}

// Close implements Repository.Close. The repository holds no open handles.
func (fsRepo *FileSystemRepository) Close() error {
	return nil
}

func (fsRepo *FileSystemRepository) update(ctx context.Context, mutate func(map[string]string)) (err error) {
	fsRepo.m.Lock()
	defer fsRepo.m.Unlock()

	defer func() {
		if err != nil {
			fsRepo.log.ErrorContext(ctx, "kv write failed", "error", err)
		}
	}()

	release, err := fsRepo.flock(ctx, syscall.LOCK_EX)
	if err != nil {
		return fmt.Errorf("flock: %w", err)
	}
	defer release()

	document, err := fsRepo.readDocument()
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	mutate(document)

	if err := fsRepo.writeDocument(document); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	return nil
}

func (fsRepo *FileSystemRepository) readDocument() (map[string]string, error) {
	document := make(map[string]string)

	data, err := os.ReadFile(fsRepo.cfg.Filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document, nil
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	if len(data) == 0 {
		return document, nil
	}

	if err := json.Unmarshal(data, &document); err != nil {
		return nil, errors.Join(ErrCorruptStore, err)
	}

	return document, nil
}

func (fsRepo *FileSystemRepository) writeDocument(document map[string]string) error {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp := fsRepo.cfg.Filename + ".tmp"

	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)

		return fmt.Errorf("write: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)

		return fmt.Errorf("sync: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmp)

		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmp, fsRepo.cfg.Filename); err != nil {
		os.Remove(tmp)

		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

func (fsRepo *FileSystemRepository) flock(ctx context.Context, mode int) (release func(), err error) {
	lockfile := fsRepo.cfg.Filename + ".lock"

	file, err := os.OpenFile(lockfile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), mode); err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("flock: %w", err)
	}

	return func() {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()

		fsRepo.log.DebugContext(ctx, "lock released", "lockfile", lockfile)
	}, nil
}
