// Package memory is an in-memory Store used by tests and local development.
// It mirrors the production store's behavior: field-level merges, set
// semantics on adminIds, and watchers that receive the full current result
// set on every change, starting with one delivery of the current state.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"teamDeck/model"
	"teamDeck/set"
	"teamDeck/store"
)

type Storage struct {
	mu sync.RWMutex

	profiles map[string]*model.PlayerProfile
	settings *model.TeamSettings

	profileWatchers  map[int]func([]model.PlayerProfile)
	settingsWatchers map[int]func(*model.TeamSettings)
	nextWatcherID    int
}

var _ store.Store = (*Storage)(nil)

// New creates a new empty in-memory store.
func New() *Storage {
	return &Storage{
		profiles:         make(map[string]*model.PlayerProfile),
		profileWatchers:  make(map[int]func([]model.PlayerProfile)),
		settingsWatchers: make(map[int]func(*model.TeamSettings)),
	}
}

func (s *Storage) GetProfileByUserID(ctx context.Context, userID string) (*model.PlayerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, model.ErrProfileNotFound
}

func (s *Storage) CreateProfile(ctx context.Context, profile *model.PlayerProfile) (*model.PlayerProfile, error) {
	s.mu.Lock()
	p := *profile
	p.ID = uuid.NewString()
	s.profiles[p.ID] = &p
	s.mu.Unlock()

	s.notifyProfiles()
	c := p
	return &c, nil
}

func (s *Storage) UpdateProfile(ctx context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	p, ok := s.profiles[id]
	if !ok {
		s.mu.Unlock()
		return model.ErrProfileNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "jerseyNumber":
			p.JerseyNumber = v.(int)
		case "avatarRef":
			p.AvatarRef = v.(string)
		case "role":
			p.Role = v.(string)
		}
	}
	s.mu.Unlock()

	s.notifyProfiles()
	return nil
}

func (s *Storage) ListProfiles(ctx context.Context) ([]model.PlayerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profileList(), nil
}

func (s *Storage) WatchProfiles(ctx context.Context, onChange func([]model.PlayerProfile)) store.Subscription {
	s.mu.Lock()
	id := s.nextWatcherID
	s.nextWatcherID++
	s.profileWatchers[id] = onChange
	current := s.profileList()
	s.mu.Unlock()

	onChange(current)
	return &subscription{stop: func() {
		s.mu.Lock()
		delete(s.profileWatchers, id)
		s.mu.Unlock()
	}}
}

func (s *Storage) GetSettings(ctx context.Context) (*model.TeamSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, model.ErrSettingsNotFound
	}
	c := *s.settings
	return &c, nil
}

func (s *Storage) WriteSettings(ctx context.Context, settings *model.TeamSettings) error {
	s.mu.Lock()
	c := *settings
	s.settings = &c
	s.mu.Unlock()

	s.notifySettings()
	return nil
}

func (s *Storage) UpdateSettings(ctx context.Context, fields map[string]any) error {
	s.mu.Lock()
	if s.settings == nil {
		// Merge writes create the document when absent, matching Firestore's
		// Set-with-MergeAll behavior.
		s.settings = &model.TeamSettings{}
	}
	for k, v := range fields {
		switch k {
		case "coachMessage":
			s.settings.CoachMessage = v.(string)
		case "lastEditor":
			s.settings.LastEditor = v.(string)
		case "lastEditedAt":
			s.settings.LastEditedAt = v.(time.Time)
		case "opponent":
			s.settings.Opponent = v.(string)
		case "matchDateTime":
			s.settings.MatchDateTime = v.(string)
		case "jerseyColor":
			s.settings.JerseyColor = v.(string)
		}
	}
	s.mu.Unlock()

	s.notifySettings()
	return nil
}

func (s *Storage) AddAdmin(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.settings == nil {
		s.mu.Unlock()
		return model.ErrSettingsNotFound
	}
	admins := set.FromSlice(s.settings.AdminIDs)
	if !admins.Contains(id) {
		s.settings.AdminIDs = append(s.settings.AdminIDs, id)
	}
	s.mu.Unlock()

	s.notifySettings()
	return nil
}

func (s *Storage) RemoveAdmin(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.settings == nil {
		s.mu.Unlock()
		return model.ErrSettingsNotFound
	}
	kept := make([]string, 0, len(s.settings.AdminIDs))
	for _, a := range s.settings.AdminIDs {
		if a != id {
			kept = append(kept, a)
		}
	}
	s.settings.AdminIDs = kept
	s.mu.Unlock()

	s.notifySettings()
	return nil
}

func (s *Storage) WatchSettings(ctx context.Context, onChange func(*model.TeamSettings)) store.Subscription {
	s.mu.Lock()
	id := s.nextWatcherID
	s.nextWatcherID++
	s.settingsWatchers[id] = onChange
	current := s.settingsCopy()
	s.mu.Unlock()

	onChange(current)
	return &subscription{stop: func() {
		s.mu.Lock()
		delete(s.settingsWatchers, id)
		s.mu.Unlock()
	}}
}

type subscription struct {
	once sync.Once
	stop func()
}

func (s *subscription) Stop() {
	s.once.Do(s.stop)
}

// profileList copies the current profiles. Caller must hold at least a read
// lock.
func (s *Storage) profileList() []model.PlayerProfile {
	result := make([]model.PlayerProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		result = append(result, *p)
	}
	return result
}

// settingsCopy copies the current settings, nil when absent. Caller must hold
// at least a read lock.
func (s *Storage) settingsCopy() *model.TeamSettings {
	if s.settings == nil {
		return nil
	}
	c := *s.settings
	c.AdminIDs = append([]string(nil), s.settings.AdminIDs...)
	return &c
}

func (s *Storage) notifyProfiles() {
	s.mu.RLock()
	current := s.profileList()
	watchers := make([]func([]model.PlayerProfile), 0, len(s.profileWatchers))
	for _, w := range s.profileWatchers {
		watchers = append(watchers, w)
	}
	s.mu.RUnlock()

	for _, w := range watchers {
		w(current)
	}
}

func (s *Storage) notifySettings() {
	s.mu.RLock()
	current := s.settingsCopy()
	watchers := make([]func(*model.TeamSettings), 0, len(s.settingsWatchers))
	for _, w := range s.settingsWatchers {
		watchers = append(watchers, w)
	}
	s.mu.RUnlock()

	for _, w := range watchers {
		w(current)
	}
}
