// Package state holds the client-local projection of the roster and settings
// documents. The view is derived and disposable: the document store stays
// authoritative, and each subscription delivery replaces its whole slice of
// the view. The two update entry points, SetProfiles and SetSettings, are the
// only writers besides the optimistic overlay.
package state

import (
	"sync"

	"teamDeck/model"
	"teamDeck/set"
)

type View struct {
	mu sync.RWMutex

	profiles []model.PlayerProfile
	settings *model.TeamSettings

	// pending holds optimistic field overlays keyed by profile id. Overlays
	// are applied on read and dropped wholesale on the next roster delivery,
	// so a failed remote write can diverge only until the store speaks again.
	pending map[string]map[string]any
}

func NewView() *View {
	return &View{
		pending: make(map[string]map[string]any),
	}
}

// DefaultSettings is the projection consumers fall back to while the settings
// document does not exist. An absent document means "no admins known yet",
// never an implicit grant.
func DefaultSettings() model.TeamSettings {
	return model.TeamSettings{
		AdminIDs:     []string{},
		Opponent:     "TBD",
		JerseyColor:  "Home",
		CoachMessage: "Welcome to the team hub!",
	}
}

// SetProfiles replaces the roster slice of the view with a full snapshot and
// clears every optimistic overlay, which the delivery supersedes.
func (v *View) SetProfiles(profiles []model.PlayerProfile) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profiles = append([]model.PlayerProfile(nil), profiles...)
	v.pending = make(map[string]map[string]any)
}

// SetSettings replaces the settings slice of the view. nil records absence.
func (v *View) SetSettings(settings *model.TeamSettings) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if settings == nil {
		v.settings = nil
		return
	}
	c := *settings
	c.AdminIDs = append([]string(nil), settings.AdminIDs...)
	v.settings = &c
}

// ApplyOptimistic overlays fields on the identified profile until the next
// roster delivery. Used by the mutation gateway after it issues a write.
func (v *View) ApplyOptimistic(profileID string, fields map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	overlay, ok := v.pending[profileID]
	if !ok {
		overlay = make(map[string]any)
		v.pending[profileID] = overlay
	}
	for k, val := range fields {
		overlay[k] = val
	}
}

// Profiles returns the current roster with optimistic overlays applied.
// Ordering carries no meaning.
func (v *View) Profiles() []model.PlayerProfile {
	v.mu.RLock()
	defer v.mu.RUnlock()
	result := make([]model.PlayerProfile, len(v.profiles))
	for i, p := range v.profiles {
		result[i] = v.overlaid(p)
	}
	return result
}

// ProfileForUser returns the profile owned by userID. When the first-contact
// race has left duplicates, the most recently created profile wins, with the
// greater document id breaking exact ties, so every consumer resolves to the
// same one.
func (v *View) ProfileForUser(userID string) (*model.PlayerProfile, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var best *model.PlayerProfile
	for i := range v.profiles {
		p := &v.profiles[i]
		if p.UserID != userID {
			continue
		}
		if best == nil ||
			p.CreatedAt.After(best.CreatedAt) ||
			(p.CreatedAt.Equal(best.CreatedAt) && p.ID > best.ID) {
			best = p
		}
	}
	if best == nil {
		return nil, false
	}
	c := v.overlaid(*best)
	return &c, true
}

// Settings returns the current settings projection and whether the document
// exists. While absent the default projection is returned.
func (v *View) Settings() (model.TeamSettings, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.settings == nil {
		return DefaultSettings(), false
	}
	c := *v.settings
	c.AdminIDs = append([]string(nil), v.settings.AdminIDs...)
	return c, true
}

// IsAdmin reports whether id is in the current admin set. Always false while
// the settings document is absent. This check is advisory; enforcement lives
// in the store's access rules.
func (v *View) IsAdmin(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.settings == nil || id == "" {
		return false
	}
	return set.FromSlice(v.settings.AdminIDs).Contains(id)
}

// AdminCount returns the size of the current admin set under set semantics.
func (v *View) AdminCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.settings == nil {
		return 0
	}
	return set.FromSlice(v.settings.AdminIDs).Size()
}

// overlaid applies any pending overlay to a copy of p. Caller must hold at
// least a read lock.
func (v *View) overlaid(p model.PlayerProfile) model.PlayerProfile {
	overlay, ok := v.pending[p.ID]
	if !ok {
		return p
	}
	for k, val := range overlay {
		switch k {
		case "name":
			p.Name = val.(string)
		case "jerseyNumber":
			p.JerseyNumber = val.(int)
		case "avatarRef":
			p.AvatarRef = val.(string)
		}
	}
	return p
}
