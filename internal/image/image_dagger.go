package image

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dagger.io/dagger"
	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/daemon"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
	ignore "github.com/sabhiram/go-gitignore"
)

// buildImageViaDagger builds the Dockerfile through a Dagger session and
// loads the result into the local daemon under the configured tag, so the
// push path is the same for both strategies.
func (s *Service) buildImageViaDagger(ctx context.Context) error {
	excludes, err := buildContextExcludes(s.config.Build.Context, s.config.Build.ExcludePatterns)
	if err != nil {
		return fmt.Errorf("collecting build context excludes: %w", err)
	}

	slog.InfoContext(ctx, "building image via dagger",
		"dockerfile", s.config.Build.Dockerfile,
		"context", s.config.Build.Context,
		"platform", s.config.Build.Platform,
		"excludes", excludes)

	client, err := dagger.Connect(ctx, dagger.WithLogOutput(os.Stderr))
	if err != nil {
		return fmt.Errorf("connecting to dagger engine: %w", err)
	}
	defer client.Close()

	contextDir := client.Host().Directory(s.config.Build.Context, dagger.HostDirectoryOpts{
		Exclude: excludes,
	})

	built := contextDir.DockerBuild(dagger.DirectoryDockerBuildOpts{
		Dockerfile: s.config.Build.Dockerfile,
		Platform:   dagger.Platform(s.config.Build.Platform),
	})

	tarPath := filepath.Join(os.TempDir(), fmt.Sprintf("deployctl-build-%d.tar", time.Now().UnixNano()))
	defer os.Remove(tarPath)

	if _, err := built.Export(ctx, tarPath); err != nil {
		return fmt.Errorf("exporting built image: %w", err)
	}

	img, err := tarball.ImageFromPath(tarPath, nil)
	if err != nil {
		return fmt.Errorf("reading exported image tarball: %w", err)
	}

	tag, err := name.NewTag(s.config.Image)
	if err != nil {
		return fmt.Errorf("parsing image tag: %w", err)
	}

	if _, err := daemon.Write(tag, img, daemon.WithContext(ctx)); err != nil {
		return fmt.Errorf("loading built image into local daemon: %w", err)
	}

	slog.InfoContext(ctx, "image built and loaded into local daemon", "image", s.config.Image)

	return nil
}

// buildContextExcludes merges the configured exclude globs with the
// top-level entries the context's .gitignore rules out. Entries already
// covered by a configured glob are not duplicated.
func buildContextExcludes(contextDir string, patterns []string) ([]string, error) {
	excludes := make([]string, 0, len(patterns)+4)
	excludes = append(excludes, ".git")
	excludes = append(excludes, patterns...)

	matcher, err := ignore.CompileIgnoreFile(filepath.Join(contextDir, ".gitignore"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return excludes, nil
		}
		return nil, fmt.Errorf("compile gitignore: %w", err)
	}

	entries, err := os.ReadDir(contextDir)
	if err != nil {
		return nil, fmt.Errorf("reading build context: %w", err)
	}

	for _, entry := range entries {
		entryName := entry.Name()

		covered, err := lib.PathMatchesOneOfPatterns(entryName, patterns)
		if err != nil {
			return nil, fmt.Errorf("matching exclude patterns: %w", err)
		}
		if covered {
			continue
		}

		matchPath := entryName
		if entry.IsDir() {
			matchPath += "/"
		}
		if matcher.MatchesPath(matchPath) {
			excludes = append(excludes, entryName)
		}
	}

	return excludes, nil
}
