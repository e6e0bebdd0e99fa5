package sessionsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
	"github.com/mkrupp/mailosaurus-admin/internal/repo/kv"
)

// PrivilegeCache remembers the privileges reported at login.
// It only decides what to offer locally; the backend still enforces access.
type PrivilegeCache struct {
	repo kv.Repository
	log  logging.Logger
}

// NewPrivilegeCache creates a PrivilegeCache on repo.
func NewPrivilegeCache(repo kv.Repository) *PrivilegeCache {
	return &PrivilegeCache{
		repo: repo,
		log:  logging.GetLogger("svc.sessionsvc.privilege_cache"),
	}
}

// Load returns the cached privileges, or nil if none are cached or they cannot be read.
func (c *PrivilegeCache) Load(ctx context.Context) []string {
	raw, ok, err := c.repo.Get(ctx, KeyPrivileges)
	if err != nil {
		c.log.WarnContext(ctx, "load privileges failed", "error", err)

		return nil
	} else if !ok {
		return nil
	}

	var privileges []string
	if err := json.Unmarshal([]byte(raw), &privileges); err != nil {
		c.log.WarnContext(ctx, "invalid privileges", "error", err)

		return nil
	}

	return privileges
}

// Save stores the privileges of the logged in user. A nil list is stored as empty.
func (c *PrivilegeCache) Save(ctx context.Context, privileges []string) error {
	if privileges == nil {
		privileges = []string{}
	}

	data, err := json.Marshal(privileges)
	if err != nil {
		return fmt.Errorf("marshal privileges: %w", err)
	}

	if err := kv.Set(ctx, c.repo, KeyPrivileges, string(data)); err != nil {
		return fmt.Errorf("store privileges: %w", err)
	}

	return nil
}

// Clear forgets the cached privileges.
func (c *PrivilegeCache) Clear(ctx context.Context) error {
	if err := c.repo.DeleteMany(ctx, KeyPrivileges); err != nil {
		return fmt.Errorf("delete privileges: %w", err)
	}

	return nil
}
