package sessionsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
	"github.com/mkrupp/mailosaurus-admin/internal/repo/kv"
)

// Durable keys shared with the browser dashboard.
const (
	KeyIdentity    = "user_email"
	KeyToken       = "session_key"
	KeyPreferences = "mailosaurus-theme"
	KeyPrivileges  = "privileges"
)

// SessionStore holds at most one credential for the whole process.
// Readers always see a complete pair or nothing.
type SessionStore struct {
	repo kv.Repository
	log  logging.Logger

	m          sync.RWMutex
	credential domain.Credential
	present    bool
}

// NewSessionStore creates an empty SessionStore backed by repo.
// Call Load to pick up a previously saved credential.
func NewSessionStore(repo kv.Repository) *SessionStore {
	return &SessionStore{
		repo: repo,
		log:  logging.GetLogger("svc.sessionsvc.session_store"),
	}
}

// Load populates the store from durable storage. It never fails: storage
// errors and partially written state both leave the store without a credential.
func (s *SessionStore) Load(ctx context.Context) {
	credential, ok := s.read(ctx)

	s.m.Lock()
	defer s.m.Unlock()

	s.credential, s.present = credential, ok
}

func (s *SessionStore) read(ctx context.Context) (domain.Credential, bool) {
	values, err := s.repo.GetMany(ctx, KeyIdentity, KeyToken)
	if err != nil {
		s.log.WarnContext(ctx, "load session failed", "error", err)

		return domain.Credential{}, false
	}

	credential := domain.Credential{
		Identity: values[KeyIdentity],
		Token:    values[KeyToken],
	}

	if !credential.Valid() {
		if len(values) > 0 {
			s.log.WarnContext(ctx, "ignoring incomplete session", "keys", len(values))
		}

		return domain.Credential{}, false
	}

	s.log.DebugContext(ctx, "session loaded", "identity", credential.Identity)

	return credential, true
}

// Save persists the pair and then makes it the current credential.
// On failure the previous credential stays in place.
func (s *SessionStore) Save(ctx context.Context, identity, token string) (err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "save session failed", "identity", identity, "error", err)
		} else {
			s.log.DebugContext(ctx, "session saved", "identity", identity)
		}
	}()

	credential := domain.Credential{Identity: identity, Token: token}
	if !credential.Valid() {
		return domain.ErrInvalidCredential
	}

	// Hold the write lock across the durable write so concurrent saves land in the same order
	// in memory and on disk.
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.repo.SetMany(ctx, map[string]string{
		KeyIdentity: identity,
		KeyToken:    token,
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.credential, s.present = credential, true

	return nil
}

// Clear drops the credential from memory and then from durable storage.
// Clearing an empty store is a no-op apart from the durable delete.
func (s *SessionStore) Clear(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "clear session failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "session cleared")
		}
	}()

	s.m.Lock()
	defer s.m.Unlock()

	s.credential, s.present = domain.Credential{}, false

	if err := s.repo.DeleteMany(ctx, KeyIdentity, KeyToken); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// Current returns a copy of the credential, if any.
func (s *SessionStore) Current() (domain.Credential, bool) {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.credential, s.present
}
