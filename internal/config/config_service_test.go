package config

import (
	"errors"
	"testing"

	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	r := require.New(t)

	t.Run("must resolve defaults", func(t *testing.T) {
		t.Setenv("DEPLOYCTL_PROJECT", "acme-prod")

		cfg, err := Load()
		r.NoError(err)

		r.Equal("web", cfg.ServiceName)
		r.Equal("acme-prod", cfg.ProjectID)
		r.Equal("us-central1", cfg.Region)
		r.Equal("512Mi", cfg.Memory)
		r.Equal("1", cfg.CPU)
		r.Equal(300, cfg.TimeoutSeconds)
		r.Equal(80, cfg.Concurrency)
		r.Equal(10, cfg.MaxInstances)
		r.Equal(8080, cfg.Port)
		r.Equal([]string{"*"}, cfg.CORSOrigins)
		r.True(cfg.AllowUnauthenticated)
		r.Equal(BuildStrategyDocker, cfg.Build.Strategy)
		r.Equal("Dockerfile", cfg.Build.Dockerfile)
		r.Equal(".", cfg.Build.Context)
		r.Equal(lib.PlatformLinuxAmd64, cfg.Build.Platform)
	})

	t.Run("environment overrides must win over defaults", func(t *testing.T) {
		t.Setenv("DEPLOYCTL_SERVICE", "api")
		t.Setenv("DEPLOYCTL_PROJECT", "acme-prod")
		t.Setenv("DEPLOYCTL_REGION", "europe-west1")
		t.Setenv("DEPLOYCTL_MEMORY", "1Gi")
		t.Setenv("DEPLOYCTL_CONCURRENCY", "200")
		t.Setenv("DEPLOYCTL_CORS_ORIGINS", "https://acme.example, https://www.acme.example")
		t.Setenv("DEPLOYCTL_BUILD_DOCKERFILE", "Dockerfile.prod")
		t.Setenv("DEPLOYCTL_BUILD_STRATEGY", "dagger")

		cfg, err := Load()
		r.NoError(err)

		r.Equal("api", cfg.ServiceName)
		r.Equal("europe-west1", cfg.Region)
		r.Equal("1Gi", cfg.Memory)
		r.Equal(200, cfg.Concurrency)
		r.Equal([]string{"https://acme.example", "https://www.acme.example"}, cfg.CORSOrigins)
		r.Equal("Dockerfile.prod", cfg.Build.Dockerfile)
		r.Equal(BuildStrategyDagger, cfg.Build.Strategy)
	})

	t.Run("must derive default image from project and service", func(t *testing.T) {
		t.Setenv("DEPLOYCTL_PROJECT", "acme-prod")
		t.Setenv("DEPLOYCTL_SERVICE", "api")

		cfg, err := Load()
		r.NoError(err)
		r.Equal("gcr.io/acme-prod/api:latest", cfg.Image)
	})

	t.Run("explicit image must not be derived", func(t *testing.T) {
		t.Setenv("DEPLOYCTL_PROJECT", "acme-prod")
		t.Setenv("DEPLOYCTL_IMAGE", "us-docker.pkg.dev/acme-prod/images/web:{{git.commit}}")

		cfg, err := Load()
		r.NoError(err)
		r.Equal("us-docker.pkg.dev/acme-prod/images/web:{{git.commit}}", cfg.Image)
	})

	t.Run("project must fall back to GOOGLE_CLOUD_PROJECT", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "acme-fallback")

		cfg, err := Load()
		r.NoError(err)
		r.Equal("acme-fallback", cfg.ProjectID)
	})

	t.Run("invalid values must be rejected as bad input", func(t *testing.T) {
		t.Setenv("DEPLOYCTL_TIMEOUT", "0")

		_, err := Load()
		r.Error(err)
		r.True(errors.Is(err, lib.BadUserInputError))
	})

	t.Run("invalid build strategy must be rejected", func(t *testing.T) {
		t.Setenv("DEPLOYCTL_BUILD_STRATEGY", "buildah")

		_, err := Load()
		r.Error(err)
		r.True(errors.Is(err, lib.BadUserInputError))
	})
}
