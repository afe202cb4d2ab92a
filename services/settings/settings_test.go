package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamDeck/model"
	"teamDeck/state"
	"teamDeck/store/memory"
)

func newFixture(t *testing.T, admins ...string) (Service, *memory.Storage, *state.View) {
	t.Helper()
	db := memory.New()
	view := state.NewView()
	svc := NewService(db, view)
	if len(admins) > 0 {
		err := db.WriteSettings(context.Background(), &model.TeamSettings{AdminIDs: admins})
		require.NoError(t, err)
	}
	sub := svc.Watch(context.Background())
	t.Cleanup(sub.Stop)
	return svc, db, view
}

func TestAddAdminTwiceEqualsOnce(t *testing.T) {
	svc, db, _ := newFixture(t, "admin-1")
	ctx := context.Background()

	require.NoError(t, svc.AddAdmin(ctx, "admin-1", "user-2"))
	afterOnce, err := db.GetSettings(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.AddAdmin(ctx, "admin-1", "user-2"))
	afterTwice, err := db.GetSettings(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, afterOnce.AdminIDs, afterTwice.AdminIDs)
	assert.ElementsMatch(t, []string{"admin-1", "user-2"}, afterTwice.AdminIDs)
}

func TestRemoveAdminNonMemberIsNoOp(t *testing.T) {
	svc, db, _ := newFixture(t, "admin-1", "admin-2")
	ctx := context.Background()

	require.NoError(t, svc.RemoveAdmin(ctx, "admin-1", "user-9"))

	settings, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"admin-1", "admin-2"}, settings.AdminIDs)
}

func TestNonAdminCannotMutate(t *testing.T) {
	svc, db, _ := newFixture(t, "admin-1")
	ctx := context.Background()

	assert.ErrorIs(t, svc.AddAdmin(ctx, "user-2", "user-2"), model.ErrNotAdmin)
	assert.ErrorIs(t, svc.RemoveAdmin(ctx, "user-2", "admin-1"), model.ErrNotAdmin)
	assert.ErrorIs(t, svc.SetCoachMessage(ctx, "user-2", "hi"), model.ErrNotAdmin)

	settings, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin-1"}, settings.AdminIDs)
	assert.Empty(t, settings.CoachMessage)
}

func TestSoleAdminCannotRemoveItself(t *testing.T) {
	svc, db, _ := newFixture(t, "admin-1")
	ctx := context.Background()

	assert.ErrorIs(t, svc.RemoveAdmin(ctx, "admin-1", "admin-1"), model.ErrLastAdmin)

	settings, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin-1"}, settings.AdminIDs, "admin set never empties")
}

func TestAdminMayRemoveItselfWhenOthersRemain(t *testing.T) {
	svc, db, _ := newFixture(t, "admin-1", "admin-2")
	ctx := context.Background()

	require.NoError(t, svc.RemoveAdmin(ctx, "admin-1", "admin-1"))

	settings, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin-2"}, settings.AdminIDs)
}

func TestSetCoachMessageWritesAuditFields(t *testing.T) {
	svc, db, _ := newFixture(t, "admin-1")
	ctx := context.Background()

	require.NoError(t, svc.SetCoachMessage(ctx, "admin-1", "Practice moved to 6pm"))

	settings, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Practice moved to 6pm", settings.CoachMessage)
	assert.Equal(t, "admin-1", settings.LastEditor)
	assert.False(t, settings.LastEditedAt.IsZero())
}

func TestAbsentSettingsMeansNobodyIsAdmin(t *testing.T) {
	svc, _, view := newFixture(t) // no settings document

	_, present := view.Settings()
	assert.False(t, present, "watch delivered absence")
	assert.False(t, view.IsAdmin("anyone"))

	err := svc.AddAdmin(context.Background(), "anyone", "anyone")
	assert.ErrorIs(t, err, model.ErrNotAdmin, "absence never implicitly grants")
}

func TestWatchTracksRemoteAdminChanges(t *testing.T) {
	_, db, view := newFixture(t, "admin-1")
	ctx := context.Background()

	require.NoError(t, db.AddAdmin(ctx, "admin-2"))
	assert.True(t, view.IsAdmin("admin-2"), "remote grant observed through the watch")

	require.NoError(t, db.RemoveAdmin(ctx, "admin-2"))
	assert.False(t, view.IsAdmin("admin-2"))
}
