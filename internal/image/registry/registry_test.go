package registry

import (
	"errors"
	"testing"

	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/stretchr/testify/require"
)

type mapCredentialsStorage map[string]string

func (m mapCredentialsStorage) Set(key, value string, _ lib.KeyExtras) error {
	m[key] = value
	return nil
}

func (m mapCredentialsStorage) Get(key string) (string, error) {
	return m[key], nil
}

func (m mapCredentialsStorage) Remove(key string) error {
	delete(m, key)
	return nil
}

func TestGcpArtifactRegistryImageRef(t *testing.T) {
	r := require.New(t)

	t.Run("accepts Artifact Registry format", func(t *testing.T) {
		reg := NewGcpArtifactRegistry("us-docker.pkg.dev/acme-prod/images/web:abc123")
		ref, err := reg.GetImageRef()
		r.NoError(err)
		r.Equal("us-docker.pkg.dev/acme-prod/images/web:abc123", ref)
	})

	t.Run("accepts GCR format", func(t *testing.T) {
		reg := NewGcpArtifactRegistry("gcr.io/acme-prod/web:abc123")
		ref, err := reg.GetImageRef()
		r.NoError(err)
		r.Equal("gcr.io/acme-prod/web:abc123", ref)
	})

	t.Run("accepts regional GCR format", func(t *testing.T) {
		reg := NewGcpArtifactRegistry("eu.gcr.io/acme-prod/web:abc123")
		_, err := reg.GetImageRef()
		r.NoError(err)
	})

	t.Run("rejects unknown host", func(t *testing.T) {
		reg := NewGcpArtifactRegistry("docker.io/acme/web:abc123")
		_, err := reg.GetImageRef()
		r.Error(err)
		r.True(errors.Is(err, lib.BadUserInputError))
	})

	t.Run("rejects missing tag", func(t *testing.T) {
		reg := NewGcpArtifactRegistry("gcr.io/acme-prod/web")
		_, err := reg.GetImageRef()
		r.Error(err)
		r.True(errors.Is(err, lib.BadUserInputError))
	})

	t.Run("rejects malformed Artifact Registry path", func(t *testing.T) {
		reg := NewGcpArtifactRegistry("us-docker.pkg.dev/acme-prod/web:abc123")
		_, err := reg.GetImageRef()
		r.Error(err)
		r.True(errors.Is(err, lib.BadUserInputError))
	})

	t.Run("uses the google keychain", func(t *testing.T) {
		reg := NewGcpArtifactRegistry("gcr.io/acme-prod/web:abc123")
		r.Equal(AuthTypeKeychain, reg.GetAuthType())
		r.NotNil(reg.GetKeychain())
	})
}

func TestGithubContainerRegistry(t *testing.T) {
	r := require.New(t)

	t.Run("accepts ghcr format", func(t *testing.T) {
		reg := NewGithubContainerRegistry(mapCredentialsStorage{}, "ghcr.io/acme/web:abc123", nil)
		ref, err := reg.GetImageRef()
		r.NoError(err)
		r.Equal("ghcr.io/acme/web:abc123", ref)
	})

	t.Run("rejects wrong domain", func(t *testing.T) {
		reg := NewGithubContainerRegistry(mapCredentialsStorage{}, "gcr.io/acme/web:abc123", nil)
		_, err := reg.GetImageRef()
		r.Error(err)
		r.True(errors.Is(err, lib.BadUserInputError))
	})

	t.Run("rejects missing tag", func(t *testing.T) {
		reg := NewGithubContainerRegistry(mapCredentialsStorage{}, "ghcr.io/acme/web", nil)
		_, err := reg.GetImageRef()
		r.Error(err)
		r.True(errors.Is(err, lib.BadUserInputError))
	})

	t.Run("resolves credentials from env before storage", func(t *testing.T) {
		t.Setenv("DEPLOYCTL_GHCR_ACCESS_KEY", "token-from-env")

		storage := mapCredentialsStorage{usernameStorageKey: "octocat"}
		reg := NewGithubContainerRegistry(storage, "ghcr.io/acme/web:abc123", []string{lib.GHCRAccessKeyEnv})

		auth, err := reg.GetAuthentication()
		r.NoError(err)

		cfg, err := auth.Authorization()
		r.NoError(err)
		r.Equal("octocat", cfg.Username)
		r.Equal("token-from-env", cfg.Password)
	})

	t.Run("reset removes stored credentials", func(t *testing.T) {
		storage := mapCredentialsStorage{
			usernameStorageKey:    "octocat",
			accessTokenStorageKey: "token",
		}
		reg := NewGithubContainerRegistry(storage, "ghcr.io/acme/web:abc123", nil)

		r.NoError(reg.ResetAuthentication())
		r.Empty(storage[usernameStorageKey])
		r.Empty(storage[accessTokenStorageKey])
	})
}
