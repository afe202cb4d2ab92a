// Package settings keeps the singleton team-settings document in the view and
// carries the admin-set and coach-message mutations. The admin check here is
// advisory, performed against the current view before a write goes out; the
// authoritative check is the document store's access rules.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"teamDeck/model"
	"teamDeck/state"
	"teamDeck/store"
)

type Service interface {
	// Watch feeds the view with the settings document on every remote change,
	// nil while it does not exist, until the subscription is stopped.
	Watch(ctx context.Context) store.Subscription

	// AddAdmin grants admin rights to target. actor must currently be an
	// admin. Adding a present id is a no-op thanks to the store's set-union
	// write.
	AddAdmin(ctx context.Context, actor, target string) error

	// RemoveAdmin revokes admin rights from target with a set-difference
	// write; removing a non-member is a no-op. The sole remaining admin may
	// not remove itself.
	RemoveAdmin(ctx context.Context, actor, target string) error

	// SetCoachMessage updates the coach message plus the lastEditor and
	// lastEditedAt audit fields. actor must currently be an admin.
	SetCoachMessage(ctx context.Context, actor, message string) error
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

func (s *service) Watch(ctx context.Context) store.Subscription {
	return s.db.WatchSettings(ctx, func(settings *model.TeamSettings) {
		if settings == nil {
			log.Debug().Msg("settings delivery: document absent")
		} else {
			log.Debug().Int("admins", len(settings.AdminIDs)).Msg("settings delivery")
		}
		s.view.SetSettings(settings)
	})
}

func (s *service) AddAdmin(ctx context.Context, actor, target string) error {
	if target == "" {
		return fmt.Errorf("%w: admin id must not be empty", model.ErrValidation)
	}
	if !s.view.IsAdmin(actor) {
		return model.ErrNotAdmin
	}
	if err := s.db.AddAdmin(ctx, target); err != nil {
		return fmt.Errorf("failed to add admin: %w", err)
	}
	log.Info().Str("actor", actor).Str("target", target).Msg("admin added")
	return nil
}

func (s *service) RemoveAdmin(ctx context.Context, actor, target string) error {
	if !s.view.IsAdmin(actor) {
		return model.ErrNotAdmin
	}
	if actor == target && s.view.AdminCount() <= 1 {
		return model.ErrLastAdmin
	}
	if err := s.db.RemoveAdmin(ctx, target); err != nil {
		return fmt.Errorf("failed to remove admin: %w", err)
	}
	log.Info().Str("actor", actor).Str("target", target).Msg("admin removed")
	return nil
}

func (s *service) SetCoachMessage(ctx context.Context, actor, message string) error {
	if !s.view.IsAdmin(actor) {
		return model.ErrNotAdmin
	}
	err := s.db.UpdateSettings(ctx, map[string]any{
		"coachMessage": message,
		"lastEditor":   actor,
		"lastEditedAt": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update coach message: %w", err)
	}
	return nil
}
