package kv_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	. "github.com/mkrupp/mailosaurus-admin/internal/repo/kv"
)

// testRepositoryContract runs the behaviour every Repository driver must share.
func testRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		repo := newRepo(t)

		value, ok, err := repo.Get(context.TODO(), "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if ok || value != "" {
			t.Errorf("expected no value, got %q (ok=%v)", value, ok)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		repo := newRepo(t)

		if err := Set(context.TODO(), repo, "user_email", "admin@example.com"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		value, ok, err := repo.Get(context.TODO(), "user_email")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !ok || value != "admin@example.com" {
			t.Errorf("want %q, got %q (ok=%v)", "admin@example.com", value, ok)
		}
	})

	t.Run("set many overwrites and get many skips missing", func(t *testing.T) {
		repo := newRepo(t)

		if err := repo.SetMany(context.TODO(), map[string]string{"a": "1", "b": "2"}); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		if err := repo.SetMany(context.TODO(), map[string]string{"b": "3"}); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		values, err := repo.GetMany(context.TODO(), "a", "b", "c")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(values) != 2 || values["a"] != "1" || values["b"] != "3" {
			t.Errorf("unexpected values: %v", values)
		}
	})

	t.Run("empty value is stored", func(t *testing.T) {
		repo := newRepo(t)

		if err := Set(context.TODO(), repo, "empty", ""); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		_, ok, err := repo.Get(context.TODO(), "empty")
		if err != nil || !ok {
			t.Errorf("expected empty value to exist, ok=%v err=%v", ok, err)
		}
	})

	t.Run("empty key is rejected atomically", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.SetMany(context.TODO(), map[string]string{"": "x", "valid": "y"})
		if !errors.Is(err, ErrEmptyKey) {
			t.Fatalf("want ErrEmptyKey, got %v", err)
		}

		if _, ok, _ := repo.Get(context.TODO(), "valid"); ok {
			t.Error("expected no entry to be written")
		}
	})

	t.Run("delete many ignores missing keys", func(t *testing.T) {
		repo := newRepo(t)

		if err := repo.SetMany(context.TODO(), map[string]string{"a": "1", "b": "2", "c": "3"}); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		if err := repo.DeleteMany(context.TODO(), "a", "b", "missing"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		values, err := repo.GetMany(context.TODO(), "a", "b", "c")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(values) != 1 || values["c"] != "3" {
			t.Errorf("unexpected values: %v", values)
		}
	})

	t.Run("concurrent writers", func(t *testing.T) {
		repo := newRepo(t)

		var wg sync.WaitGroup

		for i := range 16 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				key := fmt.Sprintf("key-%d", i)
				if err := Set(context.TODO(), repo, key, key); err != nil {
					t.Errorf("failed to set %s: %v", key, err)
				}
			}()
		}

		wg.Wait()

		keys := make([]string, 16)
		for i := range keys {
			keys[i] = fmt.Sprintf("key-%d", i)
		}

		values, err := repo.GetMany(context.TODO(), keys...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(values) != 16 {
			t.Errorf("want 16 values, got %d", len(values))
		}
	})
}
