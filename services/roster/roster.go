// Package roster keeps the live player roster and applies a member's edits to
// their own profile. Remote truth arrives through the store subscription; a
// mutation is reflected optimistically in the view and confirmed (or
// superseded) by the next delivery.
package roster

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/rs/zerolog/log"

	"teamDeck/model"
	"teamDeck/state"
	"teamDeck/store"
)

const avatarBaseURL = "https://api.dicebear.com/9.x/bottts/png"

type Service interface {
	// EnsureProfile returns the profile owned by identity, creating a default
	// one on first contact. The check-then-create is not atomic: two sessions
	// of the same identity racing here can both create, and readers resolve
	// duplicates through the view's deterministic pick.
	EnsureProfile(ctx context.Context, identity string) (*model.PlayerProfile, error)

	// Watch feeds the view with the full roster on every remote change until
	// the returned subscription is stopped.
	Watch(ctx context.Context) store.Subscription

	// UpdateOwnProfile validates and applies the caller's edits to their own
	// profile: name, jersey number, and avatar reference only. The view is
	// updated optimistically as soon as the write is issued; a failed write is
	// not rolled back and diverges only until the next delivery.
	UpdateOwnProfile(ctx context.Context, identity string, update model.ProfileUpdate) (*model.PlayerProfile, error)
}

type service struct {
	db   store.Store
	view *state.View
}

var _ Service = (*service)(nil)

func NewService(db store.Store, view *state.View) Service {
	return &service{
		db:   db,
		view: view,
	}
}

func (s *service) EnsureProfile(ctx context.Context, identity string) (*model.PlayerProfile, error) {
	existing, err := s.db.GetProfileByUserID(ctx, identity)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	profile := DefaultProfile(identity)
	created, err := s.db.CreateProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	log.Info().Str("userId", identity).Str("profileId", created.ID).Msg("created first-contact profile")
	return created, nil
}

// DefaultProfile builds the profile written on an identity's first contact.
func DefaultProfile(identity string) *model.PlayerProfile {
	fragment := identityFragment(identity)
	return &model.PlayerProfile{
		UserID:       identity,
		Name:         "Player " + fragment,
		JerseyNumber: model.DefaultJerseyNumber,
		AvatarRef:    AvatarRef(fragment),
		Role:         model.DefaultRole,
		CreatedAt:    time.Now(),
	}
}

// AvatarRef builds a placeholder avatar reference for the given seed. The
// reference is opaque to this core: stored and forwarded, never fetched.
func AvatarRef(seed string) string {
	return avatarBaseURL + "?seed=" + url.QueryEscape(seed)
}

func (s *service) Watch(ctx context.Context) store.Subscription {
	return s.db.WatchProfiles(ctx, func(profiles []model.PlayerProfile) {
		log.Debug().Int("count", len(profiles)).Msg("roster delivery")
		s.view.SetProfiles(profiles)
	})
}

func (s *service) UpdateOwnProfile(ctx context.Context, identity string, update model.ProfileUpdate) (*model.PlayerProfile, error) {
	if err := validate(update); err != nil {
		return nil, err
	}

	profile, ok := s.view.ProfileForUser(identity)
	if !ok {
		return nil, model.ErrProfileNotFound
	}

	fields := mergeFields(update)
	if len(fields) == 0 {
		return profile, nil
	}

	s.view.ApplyOptimistic(profile.ID, fields)
	if err := s.db.UpdateProfile(ctx, profile.ID, fields); err != nil {
		// The optimistic overlay stays until the next roster delivery.
		log.Error().Err(err).Str("profileId", profile.ID).Msg("profile write failed")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	updated, _ := s.view.ProfileForUser(identity)
	return updated, nil
}

func validate(update model.ProfileUpdate) error {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", model.ErrValidation)
	}
	if update.JerseyNumber != nil {
		n := *update.JerseyNumber
		if n < model.MinJerseyNumber || n > model.MaxJerseyNumber {
			return fmt.Errorf("%w: jersey number must be between %d and %d",
				model.ErrValidation, model.MinJerseyNumber, model.MaxJerseyNumber)
		}
	}
	return nil
}

// mergeFields flattens the update into a merge-write map, dropping unset
// fields.
func mergeFields(update model.ProfileUpdate) map[string]any {
	fields := structs.Map(update)
	for k, v := range fields {
		switch p := v.(type) {
		case *string:
			fields[k] = *p
		case *int:
			fields[k] = *p
		}
	}
	return fields
}

// identityFragment derives a short human-readable tag from an identity id.
func identityFragment(identity string) string {
	if len(identity) > 6 {
		return identity[:6]
	}
	if identity == "" {
		return "anon"
	}
	return identity
}
