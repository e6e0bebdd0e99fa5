package sessionsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
	"github.com/mkrupp/mailosaurus-admin/internal/repo/kv"
)

// PreferenceStore reads and writes the theme preferences.
// Preferences are cosmetic: unreadable values fall back to the defaults.
type PreferenceStore struct {
	repo kv.Repository
	log  logging.Logger
}

// NewPreferenceStore creates a PreferenceStore on repo.
func NewPreferenceStore(repo kv.Repository) *PreferenceStore {
	return &PreferenceStore{
		repo: repo,
		log:  logging.GetLogger("svc.sessionsvc.preference_store"),
	}
}

// Load returns the stored preferences or the defaults.
func (s *PreferenceStore) Load(ctx context.Context) domain.Preferences {
	raw, ok, err := s.repo.Get(ctx, KeyPreferences)
	if err != nil {
		s.log.WarnContext(ctx, "load preferences failed", "error", err)

		return domain.DefaultPreferences()
	} else if !ok {
		return domain.DefaultPreferences()
	}

	var prefs domain.Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		s.log.WarnContext(ctx, "invalid preferences", "error", err)

		return domain.DefaultPreferences()
	}

	if err := prefs.Validate(); err != nil {
		s.log.WarnContext(ctx, "invalid preferences", "error", err)

		return domain.DefaultPreferences()
	}

	return prefs
}

// Save validates and stores prefs.
func (s *PreferenceStore) Save(ctx context.Context, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	if err := kv.Set(ctx, s.repo, KeyPreferences, string(data)); err != nil {
		return fmt.Errorf("store preferences: %w", err)
	}

	return nil
}

// ToggleMode flips between light and dark and returns the stored result.
func (s *PreferenceStore) ToggleMode(ctx context.Context) (domain.Preferences, error) {
	prefs := s.Load(ctx).Toggled()

	if err := s.Save(ctx, prefs); err != nil {
		return domain.Preferences{}, err
	}

	return prefs, nil
}

// SetColor changes the accent color and returns the stored result.
func (s *PreferenceStore) SetColor(ctx context.Context, color domain.ThemeColor) (domain.Preferences, error) {
	prefs := s.Load(ctx)
	prefs.Color = color

	if err := s.Save(ctx, prefs); err != nil {
		return domain.Preferences{}, err
	}

	return prefs, nil
}
