package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	ginmiddleware "github.com/oapi-codegen/gin-middleware"

	"teamDeck/api"
	"teamDeck/clients/gcp"
	"teamDeck/envvars"
	"teamDeck/services/identity"
	"teamDeck/services/roster"
	"teamDeck/services/seed"
	"teamDeck/services/settings"
	"teamDeck/state"
	firestorestore "teamDeck/store/firestore"
	"teamDeck/validator"
)

func main() {
	env := envvars.GetEvn()
	ctx := context.Background()

	firestore := gcp.CreateFirestore(ctx, env.ProjectID)
	defer firestore.Close()

	db := firestorestore.New(firestore, env.AppID)
	view := state.NewView()

	identityService := identity.NewService(resty.New(), env.IdentityAPIKey, env.BootstrapToken)
	sessionIdentity := identityService.Acquire(ctx)
	if identity.IsSentinel(sessionIdentity) {
		slog.Warn("running with degraded sentinel identity")
	}

	rosterService := roster.NewService(db, view)
	settingsService := settings.NewService(db, view)

	// Seeding runs once, gated by identity bootstrap, before the
	// subscriptions attach. A failure degrades to an unseeded view; the
	// subscriptions pick up whatever another client seeds.
	coordinator := seed.NewCoordinator(db, rosterService, seed.LoadFixture(ctx, env.SeedBucket))
	if err := coordinator.EnsureSeeded(ctx, sessionIdentity); err != nil {
		slog.With("error", err.Error()).Error("failed to ensure seeded state")
	}

	rosterSub := rosterService.Watch(ctx)
	defer rosterSub.Stop()
	settingsSub := settingsService.Watch(ctx)
	defer settingsSub.Stop()

	server := NewServer(view, rosterService, settingsService, sessionIdentity)

	swagger, err := api.GetSwagger()
	if err != nil {
		slog.Error("failed to load swagger spec file")
		return
	}
	// Clear out the servers array in the swagger spec, that skips validating
	// that server names match. We don't know how this thing will be run.
	swagger.Servers = nil

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/openapi", func(c *gin.Context) {
		c.Header("Content-Type", "application/x-yaml")
		c.File("./api/openapi.yaml")
	})

	r.Use(ginmiddleware.OapiRequestValidatorWithOptions(swagger, &ginmiddleware.Options{
		Options: openapi3filterOptions(),
	}))

	r.GET("/view", server.GetView)
	r.PATCH("/profile", server.UpdateProfile)
	r.POST("/admins", server.AddAdmin)
	r.DELETE("/admins/:id", server.RemoveAdmin)
	r.PUT("/coach-message", server.SetCoachMessage)

	s := &http.Server{
		Handler: r,
		Addr:    "0.0.0.0:8080",
	}

	slog.Info("Starting HTTP server on port 8080")
	log.Fatal(s.ListenAndServe())
}

func openapi3filterOptions() openapi3filter.Options {
	return openapi3filter.Options{
		AuthenticationFunc: validator.Authenticate,
	}
}
