package kv_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/mkrupp/mailosaurus-admin/internal/repo/kv"
)

func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	testRepositoryContract(t, func(t *testing.T) Repository {
		t.Helper()

		return NewMemoryRepository()
	})
}

func TestRepositoryFactoryFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		driver  string
		wantErr error
	}{
		{name: "memory driver", driver: DriverMemory},
		{name: "unknown driver", driver: "redis", wantErr: ErrUnknownDriver},
		{name: "empty driver", driver: "", wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			factory, err := RepositoryFactoryFor(Config{Driver: tt.driver})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want error %v, got %v", tt.wantErr, err)
			}

			if tt.wantErr != nil {
				return
			}

			repo, err := factory(context.TODO())
			if err != nil {
				t.Fatalf("factory failed: %v", err)
			}
			defer repo.Close()

			if _, ok := repo.(*MemoryRepository); !ok {
				t.Errorf("expected *MemoryRepository, got %T", repo)
			}
		})
	}
}
