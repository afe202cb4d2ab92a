// Package firestore is the production Store implementation. Documents live
// under apps/{appID}: the players collection at apps/{appID}/players and the
// singleton settings document at apps/{appID}/meta/settings.
//
// Merge behavior is Firestore's: Set with MergeAll performs a field-level
// merge, plain Set replaces the document, and adminIds mutations use the
// ArrayUnion and ArrayRemove transforms. Concurrent writers are resolved by
// Firestore's last-write-wins rules; nothing here adds locking on top.
package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"teamDeck/model"
	"teamDeck/store"
	"teamDeck/utils"
)

const (
	appCollection    = "apps"
	playerCollection = "players"
	metaCollection   = "meta"
	settingsDoc      = "settings"
)

type Storage struct {
	db    *firestore.Client
	appID string
}

var _ store.Store = (*Storage)(nil)

func New(db *firestore.Client, appID string) *Storage {
	return &Storage{
		db:    db,
		appID: appID,
	}
}

func (s *Storage) players() *firestore.CollectionRef {
	return s.db.Collection(appCollection).Doc(s.appID).Collection(playerCollection)
}

func (s *Storage) settings() *firestore.DocumentRef {
	return s.db.Collection(appCollection).Doc(s.appID).Collection(metaCollection).Doc(settingsDoc)
}

func (s *Storage) GetProfileByUserID(ctx context.Context, userID string) (*model.PlayerProfile, error) {
	iter := s.players().
		Where("userId", "==", userID).
		Limit(1).
		Documents(ctx)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		profile := model.PlayerProfile{}
		err = doc.DataTo(&profile)
		if err != nil {
			return nil, err
		}
		return &profile, nil
	}
	return nil, model.ErrProfileNotFound
}

func (s *Storage) CreateProfile(ctx context.Context, profile *model.PlayerProfile) (*model.PlayerProfile, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	ref := s.players().NewDoc()
	p := *profile
	p.ID = ref.ID

	_, err := ref.Set(ctx, p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) UpdateProfile(ctx context.Context, id string, fields map[string]any) error {
	_, err := s.players().Doc(id).Set(ctx, fields, firestore.MergeAll)
	return err
}

func (s *Storage) ListProfiles(ctx context.Context) ([]model.PlayerProfile, error) {
	docs, err := s.players().Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return utils.GetAllToStructs[model.PlayerProfile](docs)
}

func (s *Storage) WatchProfiles(ctx context.Context, onChange func([]model.PlayerProfile)) store.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		snaps := s.players().Query.Snapshots(ctx)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				// The client retries transient stream errors internally;
				// anything surfaced here is terminal for the iterator. The
				// last delivered view stays in place.
				if status.Code(err) != codes.Canceled {
					log.Error().Err(err).Msg("players snapshot stream ended")
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Error().Err(err).Msg("failed to read players snapshot")
				continue
			}
			profiles, err := utils.GetAllToStructs[model.PlayerProfile](docs)
			if err != nil {
				log.Error().Err(err).Msg("failed to decode players snapshot")
				continue
			}
			onChange(profiles)
		}
	}()
	return &subscription{cancel: cancel}
}

func (s *Storage) GetSettings(ctx context.Context) (*model.TeamSettings, error) {
	doc, err := s.settings().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, model.ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	settings := model.TeamSettings{}
	if err := doc.DataTo(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Storage) WriteSettings(ctx context.Context, settings *model.TeamSettings) error {
	if settings == nil {
		return errors.New("settings is nil")
	}
	_, err := s.settings().Set(ctx, *settings)
	return err
}

func (s *Storage) UpdateSettings(ctx context.Context, fields map[string]any) error {
	_, err := s.settings().Set(ctx, fields, firestore.MergeAll)
	return err
}

func (s *Storage) AddAdmin(ctx context.Context, id string) error {
	_, err := s.settings().Update(ctx, []firestore.Update{
		{Path: "adminIds", Value: firestore.ArrayUnion(id)},
	})
	if status.Code(err) == codes.NotFound {
		return model.ErrSettingsNotFound
	}
	return err
}

func (s *Storage) RemoveAdmin(ctx context.Context, id string) error {
	_, err := s.settings().Update(ctx, []firestore.Update{
		{Path: "adminIds", Value: firestore.ArrayRemove(id)},
	})
	if status.Code(err) == codes.NotFound {
		return model.ErrSettingsNotFound
	}
	return err
}

func (s *Storage) WatchSettings(ctx context.Context, onChange func(*model.TeamSettings)) store.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		snaps := s.settings().Snapshots(ctx)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Error().Err(err).Msg("settings snapshot stream ended")
				}
				return
			}
			if !snap.Exists() {
				onChange(nil)
				continue
			}
			settings := model.TeamSettings{}
			if err := snap.DataTo(&settings); err != nil {
				log.Error().Err(err).Msg("failed to decode settings snapshot")
				continue
			}
			onChange(&settings)
		}
	}()
	return &subscription{cancel: cancel}
}

type subscription struct {
	cancel context.CancelFunc
}

func (s *subscription) Stop() {
	s.cancel()
}
