package envvars

import (
	"os"
	"reflect"
	"testing"
)

func TestGetEvn(t *testing.T) {
	// Backup and defer restore of environment variables
	backup := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range backup {
			pair := splitEnv(env)
			os.Setenv(pair[0], pair[1])
		}
	}()

	t.Run("all env vars set", func(t *testing.T) {
		os.Clearenv()
		os.Setenv(ProjectID, "test-project")
		os.Setenv(IdentityAPIKey, "test_identity_key")
		os.Setenv(AppID, "my-team")
		os.Setenv(Environment, "production")
		os.Setenv(BootstrapToken, "test_custom_token")
		os.Setenv(SeedBucket, "seed-bucket")

		expected := Env{
			ProjectID:      "test-project",
			IdentityAPIKey: "test_identity_key",
			AppID:          "my-team",
			Environment:    ProductionEnv,
			BootstrapToken: "test_custom_token",
			SeedBucket:     "seed-bucket",
		}

		if got := GetEvn(); !reflect.DeepEqual(got, expected) {
			t.Errorf("GetEvn() = %v, want %v", got, expected)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		os.Clearenv()
		os.Setenv(ProjectID, "test-project")
		os.Setenv(IdentityAPIKey, "test_identity_key")

		got := GetEvn()
		if got.Environment != DevEnv {
			t.Errorf("Expected environment to default to dev, got %s", got.Environment)
		}
		if got.AppID != DefaultAppID {
			t.Errorf("Expected app id to default to %s, got %s", DefaultAppID, got.AppID)
		}
		if got.BootstrapToken != "" {
			t.Errorf("Expected empty bootstrap token, got %s", got.BootstrapToken)
		}
	})
}

func TestIsProd(t *testing.T) {
	tests := []struct {
		name string
		env  Env
		want bool
	}{
		{"production env", Env{Environment: ProductionEnv}, true},
		{"dev env", Env{Environment: DevEnv}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProd(tt.env); got != tt.want {
				t.Errorf("IsProd() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDev(t *testing.T) {
	tests := []struct {
		name string
		env  Env
		want bool
	}{
		{"production env", Env{Environment: ProductionEnv}, false},
		{"dev env", Env{Environment: DevEnv}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDev(tt.env); got != tt.want {
				t.Errorf("IsDev() = %v, want %v", got, tt.want)
			}
		})
	}
}

func splitEnv(env string) []string {
	var s []string
	for i := 0; i < len(env); i++ {
		if env[i] == '=' {
			s = append(s, env[:i])
			s = append(s, env[i+1:])
			return s
		}
	}
	// Return slice with empty strings if no '=' is found
	return []string{"", ""}
}
