package store

import (
	"context"

	"teamDeck/model"
)

// Subscription is a handle on a live change feed. After Stop returns no
// further callbacks are delivered.
type Subscription interface {
	Stop()
}

// Store is the document store backing the roster and settings state. Two
// logical locations exist, both namespaced under the deployment's app id: a
// players collection and a singleton team-settings document.
//
// Merge contract: UpdateProfile and UpdateSettings perform field-level merges,
// never whole-document replacement; WriteSettings replaces the document.
// Concurrent writers to the same document are resolved by the store's own
// last-write-wins semantics. This core adds no locking or versioning on top.
type Store interface {
	// GetProfileByUserID returns the profile owned by userID, or
	// model.ErrProfileNotFound. When duplicates exist any one may be returned.
	GetProfileByUserID(ctx context.Context, userID string) (*model.PlayerProfile, error)

	// CreateProfile stores a new profile under a store-assigned document id
	// and returns it with the id filled in.
	CreateProfile(ctx context.Context, profile *model.PlayerProfile) (*model.PlayerProfile, error)

	// UpdateProfile merges the given fields into the profile document.
	UpdateProfile(ctx context.Context, id string, fields map[string]any) error

	// ListProfiles returns every profile in the collection. Ordering is not
	// guaranteed.
	ListProfiles(ctx context.Context) ([]model.PlayerProfile, error)

	// WatchProfiles delivers the full current profile set on every change
	// until the subscription is stopped or ctx is cancelled.
	WatchProfiles(ctx context.Context, onChange func([]model.PlayerProfile)) Subscription

	// GetSettings returns the singleton settings document, or
	// model.ErrSettingsNotFound.
	GetSettings(ctx context.Context) (*model.TeamSettings, error)

	// WriteSettings writes the whole settings document. Used only by seeding.
	WriteSettings(ctx context.Context, settings *model.TeamSettings) error

	// UpdateSettings merges the given fields into the settings document.
	UpdateSettings(ctx context.Context, fields map[string]any) error

	// AddAdmin adds id to adminIds with set-union semantics: adding a present
	// id leaves the set unchanged.
	AddAdmin(ctx context.Context, id string) error

	// RemoveAdmin removes id from adminIds with set-difference semantics:
	// removing an absent id leaves the set unchanged.
	RemoveAdmin(ctx context.Context, id string) error

	// WatchSettings delivers the settings document on every change, nil while
	// the document does not exist, until the subscription is stopped or ctx
	// is cancelled.
	WatchSettings(ctx context.Context, onChange func(*model.TeamSettings)) Subscription
}
