// Package seed establishes the baseline documents the first time a client
// observes an empty deployment: the team settings with the seeding identity as
// sole administrator, and a fixture roster of example players.
//
// This is a best-effort leader race, not consensus. Two clients racing the
// emptiness probe can both seed; the later settings write lands over the
// earlier one and the example roster doubles up. Nothing downstream depends on
// the example profiles being singular, so the duplicate data is cosmetic.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"teamDeck/clients/gcp"
	"teamDeck/model"
	"teamDeck/services/roster"
	"teamDeck/store"
)

const fixtureObject = "seed.json"

// Fixture is the baseline data written by the first bootstrapper.
type Fixture struct {
	Settings model.TeamSettings `json:"settings"`
	Players  []FixturePlayer    `json:"players"`
}

type FixturePlayer struct {
	Name         string `json:"name"`
	JerseyNumber int    `json:"jerseyNumber"`
	Role         string `json:"role"`
}

type Coordinator interface {
	// EnsureSeeded runs once per session, after identity bootstrap. When the
	// identity already owns a profile the routine returns immediately;
	// otherwise it creates the profile and, if the whole collection was
	// otherwise empty, assumes the first-bootstrapper role.
	EnsureSeeded(ctx context.Context, identity string) error
}

type coordinator struct {
	db      store.Store
	roster  roster.Service
	fixture Fixture
}

var _ Coordinator = (*coordinator)(nil)

func NewCoordinator(db store.Store, rosterService roster.Service, fixture Fixture) Coordinator {
	return &coordinator{
		db:      db,
		roster:  rosterService,
		fixture: fixture,
	}
}

func (c *coordinator) EnsureSeeded(ctx context.Context, identity string) error {
	_, err := c.db.GetProfileByUserID(ctx, identity)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrProfileNotFound) {
		return fmt.Errorf("failed to probe own profile: %w", err)
	}

	// Probe before creating our own profile. Whoever observes a roster with
	// no other members seeds; two clients can both observe that and both
	// seed, but it can never happen that each sees only the other and nobody
	// seeds.
	profiles, err := c.db.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to probe roster: %w", err)
	}

	if _, err := c.roster.EnsureProfile(ctx, identity); err != nil {
		return fmt.Errorf("failed to create own profile: %w", err)
	}

	for _, p := range profiles {
		if p.UserID != identity {
			// Someone else is already here: seeding happened (or is
			// happening) elsewhere.
			return nil
		}
	}

	log.Info().Str("userId", identity).Msg("empty deployment, seeding baseline documents")

	settings := c.fixture.Settings
	settings.AdminIDs = []string{identity}
	if err := c.db.WriteSettings(ctx, &settings); err != nil {
		return fmt.Errorf("failed to write initial settings: %w", err)
	}

	now := time.Now()
	for _, fp := range c.fixture.Players {
		p := &model.PlayerProfile{
			UserID:       "seed-" + uuid.NewString(),
			Name:         fp.Name,
			JerseyNumber: fp.JerseyNumber,
			AvatarRef:    roster.AvatarRef(fp.Name),
			Role:         fp.Role,
			CreatedAt:    now,
		}
		if _, err := c.db.CreateProfile(ctx, p); err != nil {
			return fmt.Errorf("failed to create example profile %q: %w", fp.Name, err)
		}
	}
	return nil
}

// LoadFixture fetches the seed fixture from the configured bucket, falling
// back to the built-in fixture when the bucket is unset, unreachable, or the
// object is malformed.
func LoadFixture(ctx context.Context, bucket string) Fixture {
	if bucket == "" {
		return builtinFixture()
	}
	data, err := gcp.DownloadObject(ctx, bucket, fixtureObject)
	if err != nil {
		log.Warn().Err(err).Str("bucket", bucket).Msg("seed fixture unavailable, using built-in")
		return builtinFixture()
	}
	fixture, err := parseFixture(data)
	if err != nil {
		log.Warn().Err(err).Str("bucket", bucket).Msg("seed fixture malformed, using built-in")
		return builtinFixture()
	}
	return fixture
}

func parseFixture(data []byte) (Fixture, error) {
	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return Fixture{}, err
	}
	if len(fixture.Players) == 0 {
		return Fixture{}, fmt.Errorf("fixture carries no players")
	}
	return fixture, nil
}

func builtinFixture() Fixture {
	return Fixture{
		Settings: model.TeamSettings{
			Opponent:     "Northside Ravens",
			JerseyColor:  "Home",
			CoachMessage: "Welcome to the team hub!",
		},
		Players: []FixturePlayer{
			{Name: "Maya Okafor", JerseyNumber: 7, Role: "Captain"},
			{Name: "Jonas Lindqvist", JerseyNumber: 12, Role: "Goalkeeper"},
			{Name: "Priya Raman", JerseyNumber: 23, Role: "Midfielder"},
			{Name: "Diego Fuentes", JerseyNumber: 4, Role: "Defender"},
		},
	}
}
