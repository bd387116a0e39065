package factories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AnotherFullstackDev/deployctl/internal/clouds"
	"github.com/AnotherFullstackDev/deployctl/internal/clouds/gcp"
	"github.com/AnotherFullstackDev/deployctl/internal/config"
	"github.com/AnotherFullstackDev/deployctl/internal/image"
	"github.com/AnotherFullstackDev/deployctl/internal/image/registry"
	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/AnotherFullstackDev/deployctl/internal/tags"
	"github.com/AnotherFullstackDev/deployctl/internal/tags/git"
)

// ServiceFactory assembles the deployment collaborators from the resolved
// configuration.
type ServiceFactory struct {
	config                     config.Config
	registryCredentialsStorage lib.CredentialsStorage
}

func NewServiceFactory(locator *SharedServicesLocator) *ServiceFactory {
	return &ServiceFactory{
		config:                     locator.Config,
		registryCredentialsStorage: locator.RegistryCredentialsStorage,
	}
}

// ResolveImageRef expands tag templates in the configured image reference.
// A git repository is only opened when a git.* placeholder is present.
func (f *ServiceFactory) ResolveImageRef() (string, error) {
	imageRef := f.config.Image
	if imageRef == "" {
		return "", fmt.Errorf("%w - no image configured", lib.BadUserInputError)
	}

	var repoInfo git.RepositoryInfoService
	if tags.HasGitPlaceholders(imageRef) {
		var err error
		repoInfo, err = git.NewRepositoryInfoService(f.config.Build.Context)
		if err != nil {
			return "", fmt.Errorf("image %q uses git placeholders but no repository found at %s: %w", imageRef, f.config.Build.Context, err)
		}
	}

	resolved, err := tags.NewService(repoInfo).Resolve(imageRef)
	if err != nil {
		return "", fmt.Errorf("resolving image tag template %q: %w", imageRef, err)
	}

	return resolved, nil
}

func (f *ServiceFactory) NewImageService() (*image.Service, error) {
	imageRef, err := f.ResolveImageRef()
	if err != nil {
		return nil, err
	}

	containerRegistry, err := f.newRegistry(imageRef)
	if err != nil {
		return nil, err
	}

	var cmd []string
	if f.config.Build.Cmd != "" {
		cmd = []string{f.config.Build.Cmd}
	}

	return image.NewService(image.Config{
		Image: imageRef,
		Build: image.BuildOptions{
			Strategy:        f.config.Build.Strategy,
			Dockerfile:      f.config.Build.Dockerfile,
			Context:         f.config.Build.Context,
			Cmd:             cmd,
			Platform:        f.config.Build.Platform,
			ExcludePatterns: f.config.Build.ExcludePatterns,
		},
	}, containerRegistry), nil
}

// newRegistry picks the destination by the image host: ghcr.io goes through
// the authenticator-based GHCR registry, everything else is treated as a
// GCP registry behind the google keychain.
func (f *ServiceFactory) newRegistry(imageRef string) (registry.Registry, error) {
	host, _, ok := strings.Cut(imageRef, "/")
	if !ok {
		return nil, fmt.Errorf("%w - image reference %q has no registry host", lib.BadUserInputError, imageRef)
	}

	if strings.EqualFold(host, registry.GHCRDomain) {
		slog.Debug("using GHCR registry", "image", imageRef)
		return registry.NewGithubContainerRegistry(f.registryCredentialsStorage, registry.GithubContainerRegistryConfig(imageRef), []string{
			lib.GHCRAccessKeyEnv,
			lib.GithubTokenEnv,
		}), nil
	}

	slog.Debug("using GCP registry", "image", imageRef)
	return registry.NewGcpArtifactRegistry(registry.GcpArtifactRegistryConfig(imageRef)), nil
}

func (f *ServiceFactory) NewCloudProvider(ctx context.Context) (clouds.CloudProvider, error) {
	provider, err := gcp.NewCloudRunProvider(ctx, gcp.CloudRunConfig{
		ServiceName:          f.config.ServiceName,
		ProjectID:            f.config.ProjectID,
		Region:               f.config.Region,
		Memory:               f.config.Memory,
		CPU:                  f.config.CPU,
		TimeoutSeconds:       f.config.TimeoutSeconds,
		Concurrency:          f.config.Concurrency,
		MaxInstances:         f.config.MaxInstances,
		Port:                 f.config.Port,
		ServiceAccount:       f.config.ServiceAccount,
		AllowUnauthenticated: f.config.AllowUnauthenticated,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Cloud Run provider: %w", err)
	}

	return provider, nil
}

func (f *ServiceFactory) NewBucketService(ctx context.Context) (*gcp.BucketService, error) {
	buckets, err := gcp.NewBucketService(ctx, f.config.ProjectID, f.config.Region)
	if err != nil {
		return nil, fmt.Errorf("creating bucket service: %w", err)
	}

	return buckets, nil
}
