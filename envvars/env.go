package envvars

import (
	"log"
	"os"
)

const (
	ProjectID      = "GCP_PROJECT_ID"
	IdentityAPIKey = "IDENTITY_API_KEY"
	AppID          = "APP_ID"
	Environment    = "ENVIRONMENT"
	BootstrapToken = "BOOTSTRAP_TOKEN"
	SeedBucket     = "SEED_BUCKET"
)

const (
	ProductionEnv = "production"
	DevEnv        = "dev"

	// DefaultAppID namespaces the players collection and settings document
	// when no deployment id is configured.
	DefaultAppID = "team-deck"
)

type Env struct {
	ProjectID      string
	IdentityAPIKey string
	AppID          string
	Environment    string
	BootstrapToken string
	SeedBucket     string
}

func GetEvn() Env {
	projectID, ok := os.LookupEnv(ProjectID)
	if !ok {
		log.Fatalf("%s required", ProjectID)
	}
	apiKey, ok := os.LookupEnv(IdentityAPIKey)
	if !ok {
		log.Fatalf("%s required", IdentityAPIKey)
	}
	appID, ok := os.LookupEnv(AppID)
	if !ok {
		appID = DefaultAppID
	}
	environment, ok := os.LookupEnv(Environment)
	if !ok {
		environment = DevEnv
	}
	return Env{
		ProjectID:      projectID,
		IdentityAPIKey: apiKey,
		AppID:          appID,
		Environment:    environment,
		BootstrapToken: os.Getenv(BootstrapToken),
		SeedBucket:     os.Getenv(SeedBucket),
	}
}

func IsProd(env Env) bool {
	return env.Environment == ProductionEnv
}

func IsDev(env Env) bool {
	return env.Environment == DevEnv
}
