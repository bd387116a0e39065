package registry

import (
	"fmt"
	"strings"

	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/v1/google"
)

// GcpArtifactRegistryConfig - GCP Artifact Registry / GCR destination ref
type GcpArtifactRegistryConfig string

type GcpArtifactRegistry struct {
	config GcpArtifactRegistryConfig
}

func NewGcpArtifactRegistry(config GcpArtifactRegistryConfig) Registry {
	return &GcpArtifactRegistry{config}
}

func (r *GcpArtifactRegistry) GetAuthType() AuthType {
	return AuthTypeKeychain
}

func (r *GcpArtifactRegistry) GetAuthentication() (authn.Authenticator, error) {
	return nil, nil
}

func (r *GcpArtifactRegistry) ResetAuthentication() error { return nil }

func (r *GcpArtifactRegistry) GetKeychain() authn.Keychain {
	// google.Keychain resolves Application Default Credentials, gcloud CLI
	// credentials, and metadata-server service accounts in that order.
	return google.Keychain
}

func (r *GcpArtifactRegistry) GetImageRef() (string, error) {
	imageID := string(r.config)

	host, rest, ok := strings.Cut(imageID, "/")
	if !ok {
		return "", fmt.Errorf("%w - invalid GCP registry image format: %s", lib.BadUserInputError, imageID)
	}

	switch {
	case strings.HasSuffix(host, "-docker.pkg.dev"):
		// <region>-docker.pkg.dev/<project>/<repository>/<image>:<tag>
		if len(strings.Split(rest, "/")) != 3 {
			return "", fmt.Errorf("%w - invalid Artifact Registry image format: %s, expected format: <region>-docker.pkg.dev/<project>/<repository>/<image>:<tag>", lib.BadUserInputError, imageID)
		}
	case host == "gcr.io" || strings.HasSuffix(host, ".gcr.io"):
		// gcr.io/<project>/<image>:<tag>, possibly with nested image paths
		if len(strings.Split(rest, "/")) < 2 {
			return "", fmt.Errorf("%w - invalid GCR image format: %s, expected format: gcr.io/<project>/<image>:<tag>", lib.BadUserInputError, imageID)
		}
	default:
		return "", fmt.Errorf("%w - invalid GCP registry host: %s, expected <region>-docker.pkg.dev or gcr.io", lib.BadUserInputError, host)
	}

	if err := requireTag(imageID); err != nil {
		return "", err
	}

	return imageID, nil
}

func requireTag(imageID string) error {
	lastSegment := imageID[strings.LastIndex(imageID, "/")+1:]
	tagParts := strings.SplitN(lastSegment, ":", 2)
	if len(tagParts) != 2 || tagParts[1] == "" {
		return fmt.Errorf("%w - invalid image format: %s, missing tag", lib.BadUserInputError, imageID)
	}
	return nil
}
