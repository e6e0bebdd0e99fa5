package sessionsvc_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/repo/kv"

	. "github.com/mkrupp/mailosaurus-admin/internal/svc/sessionsvc"
)

var errStorage = errors.New("storage unavailable")

// failingRepository wraps a memory repository and fails selected operations.
type failingRepository struct {
	*kv.MemoryRepository
	getErr    error
	setErr    error
	deleteErr error
}

func (r *failingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if r.getErr != nil {
		return "", false, r.getErr
	}

	return r.MemoryRepository.Get(ctx, key)
}

func (r *failingRepository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}

	return r.MemoryRepository.GetMany(ctx, keys...)
}

func (r *failingRepository) SetMany(ctx context.Context, entries map[string]string) error {
	if r.setErr != nil {
		return r.setErr
	}

	return r.MemoryRepository.SetMany(ctx, entries)
}

func (r *failingRepository) DeleteMany(ctx context.Context, keys ...string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}

	return r.MemoryRepository.DeleteMany(ctx, keys...)
}

func TestSessionStore_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stored map[string]string
		getErr error
		want   domain.Credential
		wantOk bool
	}{
		{
			name:   "complete pair",
			stored: map[string]string{KeyIdentity: "admin@example.com", KeyToken: "abc"},
			want:   domain.Credential{Identity: "admin@example.com", Token: "abc"},
			wantOk: true,
		},
		{
			name:   "nothing stored",
			stored: map[string]string{},
		},
		{
			name:   "identity without token",
			stored: map[string]string{KeyIdentity: "admin@example.com"},
		},
		{
			name:   "token without identity",
			stored: map[string]string{KeyToken: "abc"},
		},
		{
			name:   "empty token",
			stored: map[string]string{KeyIdentity: "admin@example.com", KeyToken: ""},
		},
		{
			name:   "storage failure",
			stored: map[string]string{KeyIdentity: "admin@example.com", KeyToken: "abc"},
			getErr: errStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &failingRepository{MemoryRepository: kv.NewMemoryRepository()}
			if err := repo.MemoryRepository.SetMany(context.TODO(), tt.stored); err != nil {
				t.Fatalf("failed to seed repository: %v", err)
			}

			repo.getErr = tt.getErr

			store := NewSessionStore(repo)
			store.Load(context.TODO())

			got, ok := store.Current()
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("Current() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestSessionStore_SaveThenLoad(t *testing.T) {
	t.Parallel()

	repo := kv.NewMemoryRepository()

	if err := NewSessionStore(repo).Save(context.TODO(), "admin@example.com", "abc"); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	store := NewSessionStore(repo)
	store.Load(context.TODO())

	got, ok := store.Current()
	if !ok || got.Identity != "admin@example.com" || got.Token != "abc" {
		t.Errorf("Current() = %+v, %v", got, ok)
	}
}

func TestSessionStore_Save(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		identity string
		token    string
		setErr   error
		wantErr  error
	}{
		{name: "valid pair", identity: "admin@example.com", token: "new"},
		{name: "empty identity", identity: "", token: "new", wantErr: domain.ErrInvalidCredential},
		{name: "empty token", identity: "admin@example.com", token: "", wantErr: domain.ErrInvalidCredential},
		{name: "storage failure", identity: "admin@example.com", token: "new", setErr: errStorage, wantErr: errStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &failingRepository{MemoryRepository: kv.NewMemoryRepository()}
			store := NewSessionStore(repo)

			if err := store.Save(context.TODO(), "old@example.com", "old"); err != nil {
				t.Fatalf("failed to save initial session: %v", err)
			}

			repo.setErr = tt.setErr

			err := store.Save(context.TODO(), tt.identity, tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want error %v, got %v", tt.wantErr, err)
			}

			got, ok := store.Current()
			if !ok {
				t.Fatal("expected a credential")
			}

			want := domain.Credential{Identity: tt.identity, Token: tt.token}
			if tt.wantErr != nil {
				want = domain.Credential{Identity: "old@example.com", Token: "old"}
			}

			if got != want {
				t.Errorf("Current() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestSessionStore_Clear(t *testing.T) {
	t.Parallel()

	t.Run("removes memory and durable state", func(t *testing.T) {
		t.Parallel()

		repo := kv.NewMemoryRepository()
		store := NewSessionStore(repo)

		if err := store.Save(context.TODO(), "admin@example.com", "abc"); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		if err := store.Clear(context.TODO()); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}

		if _, ok := store.Current(); ok {
			t.Error("expected no credential in memory")
		}

		values, _ := repo.GetMany(context.TODO(), KeyIdentity, KeyToken)
		if len(values) != 0 {
			t.Errorf("expected no durable keys, got %v", values)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		store := NewSessionStore(kv.NewMemoryRepository())

		for range 2 {
			if err := store.Clear(context.TODO()); err != nil {
				t.Fatalf("failed to clear: %v", err)
			}
		}
	})

	t.Run("drops memory even when storage fails", func(t *testing.T) {
		t.Parallel()

		repo := &failingRepository{MemoryRepository: kv.NewMemoryRepository()}
		store := NewSessionStore(repo)

		if err := store.Save(context.TODO(), "admin@example.com", "abc"); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		repo.deleteErr = errStorage

		if err := store.Clear(context.TODO()); !errors.Is(err, errStorage) {
			t.Errorf("want storage error, got %v", err)
		}

		if _, ok := store.Current(); ok {
			t.Error("expected no credential in memory")
		}
	})
}

func TestSessionStore_ConcurrentSnapshots(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(kv.NewMemoryRepository())

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			identity := fmt.Sprintf("user%d@example.com", i)
			if err := store.Save(context.TODO(), identity, "token-"+identity); err != nil {
				t.Errorf("failed to save: %v", err)
			}
		}()

		go func() {
			defer wg.Done()

			for range 100 {
				credential, ok := store.Current()
				if ok && credential.Token != "token-"+credential.Identity {
					t.Errorf("mixed credential observed: %+v", credential)

					return
				}
			}
		}()
	}

	wg.Wait()
}
