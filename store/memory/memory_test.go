package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"teamDeck/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestCreateAndGetProfile() {
	created, err := s.storage.CreateProfile(s.ctx, &model.PlayerProfile{
		UserID:       "user-1",
		Name:         "Alice",
		JerseyNumber: 7,
		CreatedAt:    time.Now(),
	})
	s.Require().NoError(err)
	s.NotEmpty(created.ID)

	got, err := s.storage.GetProfileByUserID(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal("Alice", got.Name)
}

func (s *StorageSuite) TestGetProfileNotFound() {
	_, err := s.storage.GetProfileByUserID(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestUpdateProfileMergesFields() {
	created, err := s.storage.CreateProfile(s.ctx, &model.PlayerProfile{
		UserID:       "user-1",
		Name:         "Alice",
		JerseyNumber: 7,
		AvatarRef:    "https://avatars.test/alice",
	})
	s.Require().NoError(err)

	err = s.storage.UpdateProfile(s.ctx, created.ID, map[string]any{"jerseyNumber": 23})
	s.Require().NoError(err)

	got, err := s.storage.GetProfileByUserID(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(23, got.JerseyNumber)
	s.Equal("Alice", got.Name, "untouched fields survive a merge")
	s.Equal("https://avatars.test/alice", got.AvatarRef)
}

func (s *StorageSuite) TestUpdateProfileNotFound() {
	err := s.storage.UpdateProfile(s.ctx, "missing", map[string]any{"name": "x"})
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestWatchProfilesDeliversFullSet() {
	var deliveries [][]model.PlayerProfile
	sub := s.storage.WatchProfiles(s.ctx, func(profiles []model.PlayerProfile) {
		deliveries = append(deliveries, profiles)
	})
	defer sub.Stop()

	s.Require().Len(deliveries, 1, "initial state delivered on subscribe")
	s.Empty(deliveries[0])

	_, err := s.storage.CreateProfile(s.ctx, &model.PlayerProfile{UserID: "user-1", Name: "Alice"})
	s.Require().NoError(err)
	_, err = s.storage.CreateProfile(s.ctx, &model.PlayerProfile{UserID: "user-2", Name: "Bob"})
	s.Require().NoError(err)

	s.Require().Len(deliveries, 3)
	s.Len(deliveries[2], 2, "each delivery carries the full current set")
}

func (s *StorageSuite) TestStoppedSubscriptionDeliversNothing() {
	count := 0
	sub := s.storage.WatchProfiles(s.ctx, func([]model.PlayerProfile) { count++ })
	sub.Stop()
	sub.Stop() // double stop is safe

	_, err := s.storage.CreateProfile(s.ctx, &model.PlayerProfile{UserID: "user-1"})
	s.Require().NoError(err)
	s.Equal(1, count, "only the initial delivery before Stop")
}

func (s *StorageSuite) TestSettingsAbsent() {
	_, err := s.storage.GetSettings(s.ctx)
	s.ErrorIs(err, model.ErrSettingsNotFound)

	var got []*model.TeamSettings
	sub := s.storage.WatchSettings(s.ctx, func(ts *model.TeamSettings) {
		got = append(got, ts)
	})
	defer sub.Stop()
	s.Require().Len(got, 1)
	s.Nil(got[0], "absence is delivered as nil")
}

func (s *StorageSuite) TestAddAdminIsIdempotent() {
	err := s.storage.WriteSettings(s.ctx, &model.TeamSettings{AdminIDs: []string{"user-1"}})
	s.Require().NoError(err)

	s.Require().NoError(s.storage.AddAdmin(s.ctx, "user-2"))
	s.Require().NoError(s.storage.AddAdmin(s.ctx, "user-2"))

	settings, err := s.storage.GetSettings(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"user-1", "user-2"}, settings.AdminIDs)
}

func (s *StorageSuite) TestRemoveAdminNonMemberIsNoOp() {
	err := s.storage.WriteSettings(s.ctx, &model.TeamSettings{AdminIDs: []string{"user-1"}})
	s.Require().NoError(err)

	s.Require().NoError(s.storage.RemoveAdmin(s.ctx, "user-9"))

	settings, err := s.storage.GetSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"user-1"}, settings.AdminIDs)
}

func (s *StorageSuite) TestAdminMutationWithoutSettings() {
	s.ErrorIs(s.storage.AddAdmin(s.ctx, "user-1"), model.ErrSettingsNotFound)
	s.ErrorIs(s.storage.RemoveAdmin(s.ctx, "user-1"), model.ErrSettingsNotFound)
}

func (s *StorageSuite) TestUpdateSettingsMerge() {
	err := s.storage.WriteSettings(s.ctx, &model.TeamSettings{
		AdminIDs: []string{"user-1"},
		Opponent: "Ravens",
	})
	s.Require().NoError(err)

	at := time.Now()
	err = s.storage.UpdateSettings(s.ctx, map[string]any{
		"coachMessage": "Bring water",
		"lastEditor":   "user-1",
		"lastEditedAt": at,
	})
	s.Require().NoError(err)

	settings, err := s.storage.GetSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal("Bring water", settings.CoachMessage)
	s.Equal("user-1", settings.LastEditor)
	s.Equal("Ravens", settings.Opponent, "untouched fields survive a merge")
}

func (s *StorageSuite) TestWatchSettingsSeesAdminChanges() {
	var got []*model.TeamSettings
	sub := s.storage.WatchSettings(s.ctx, func(ts *model.TeamSettings) {
		got = append(got, ts)
	})
	defer sub.Stop()

	err := s.storage.WriteSettings(s.ctx, &model.TeamSettings{AdminIDs: []string{"user-1"}})
	s.Require().NoError(err)
	s.Require().NoError(s.storage.AddAdmin(s.ctx, "user-2"))

	s.Require().Len(got, 3)
	s.Nil(got[0])
	s.ElementsMatch([]string{"user-1", "user-2"}, got[2].AdminIDs)
}
