package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/google/go-containerregistry/pkg/authn"
)

const (
	GHCRDomain              = "ghcr.io"
	usernameStorageKey      = "ghcr_username"
	usernameStorageLabel    = "Github Username"
	accessTokenStorageKey   = "ghcr_access_token"
	accessTokenStorageLabel = "Github Personal Access Token"
)

// GithubContainerRegistryConfig - Github container registry destination ref
type GithubContainerRegistryConfig string

type GithubContainerRegistry struct {
	storage         lib.CredentialsStorage
	config          GithubContainerRegistryConfig
	accessTokenEnvs []string
}

func NewGithubContainerRegistry(storage lib.CredentialsStorage, config GithubContainerRegistryConfig, accessTokenEnvs []string) Registry {
	return &GithubContainerRegistry{
		storage:         storage,
		config:          config,
		accessTokenEnvs: accessTokenEnvs,
	}
}

func (r *GithubContainerRegistry) GetAuthType() AuthType {
	return AuthTypeAuthenticator
}

func (r *GithubContainerRegistry) GetAuthentication() (authn.Authenticator, error) {
	username, err := lib.GetSecretFromEnvOrInput(r.storage, usernameStorageKey, usernameStorageLabel, nil, os.Stdin, os.Stdout, "Please provide Github Username for GHCR")
	if err != nil {
		return nil, fmt.Errorf("requesting ghcr username: %w", err)
	}

	authToken, err := lib.GetSecretFromEnvOrInput(r.storage, accessTokenStorageKey, accessTokenStorageLabel, r.accessTokenEnvs, os.Stdin, os.Stdout, "Please provide Github Personal Access Token (PAT)")
	if err != nil {
		return nil, fmt.Errorf("requesting ghcr access token: %w", err)
	}

	return authn.FromConfig(authn.AuthConfig{
		Username: username,
		Password: authToken,
	}), nil
}

func (r *GithubContainerRegistry) ResetAuthentication() error {
	if err := r.storage.Remove(usernameStorageKey); err != nil {
		return fmt.Errorf("resetting ghcr username: %w", err)
	}
	if err := r.storage.Remove(accessTokenStorageKey); err != nil {
		return fmt.Errorf("resetting ghcr access token: %w", err)
	}

	return nil
}

func (r *GithubContainerRegistry) GetKeychain() authn.Keychain {
	return nil
}

func (r *GithubContainerRegistry) GetImageRef() (string, error) {
	// Required format: ghcr.io/<owner>/<repository>:<tag>
	imageID := string(r.config)
	parts := strings.Split(imageID, "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w - invalid ghcr image format: %s, expected format: ghcr.io/<owner>/<repository>:<tag>", lib.BadUserInputError, imageID)
	}
	if !strings.EqualFold(parts[0], GHCRDomain) {
		return "", fmt.Errorf("%w - invalid ghcr image format: %s, expected domain: %s", lib.BadUserInputError, imageID, GHCRDomain)
	}

	if err := requireTag(imageID); err != nil {
		return "", err
	}

	return imageID, nil
}
