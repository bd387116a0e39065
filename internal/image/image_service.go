package image

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/AnotherFullstackDev/deployctl/internal/image/registry"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/daemon"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"golang.org/x/term"
)

type Service struct {
	config   Config
	registry registry.Registry
}

func NewService(config Config, registry registry.Registry) *Service {
	return &Service{
		config:   config,
		registry: registry,
	}
}

func (s *Service) GetRegistry() registry.Registry {
	return s.registry
}

func (s *Service) BuildImage(ctx context.Context) error {
	switch s.config.Build.Strategy {
	case BuildStrategyDocker:
		return s.buildImageViaCmd(ctx)
	case BuildStrategyDagger:
		return s.buildImageViaDagger(ctx)
	default:
		return fmt.Errorf("no image build strategy configured")
	}
}

// buildCommandArgs returns the build invocation: the configured override, a
// single-element override wrapped in `sh -c`, or the default `docker build`.
func (s *Service) buildCommandArgs() []string {
	args := s.config.Build.Cmd
	if len(args) == 0 {
		return []string{
			"docker", "build",
			"--file", s.config.Build.Dockerfile,
			"--tag", s.config.Image,
			"--platform", string(s.config.Build.Platform),
			s.config.Build.Context,
		}
	}
	if len(args) == 1 {
		return []string{"sh", "-c", args[0]}
	}
	return args
}

func (s *Service) buildImageViaCmd(ctx context.Context) error {
	args := s.buildCommandArgs()

	command := exec.CommandContext(ctx, args[0], args[1:]...)
	command.Env = os.Environ()
	command.Dir = s.config.Build.Context
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	slog.InfoContext(ctx, "running image build command", "args", command.Args)

	if err := command.Run(); err != nil {
		return fmt.Errorf("running image build command: %w", err)
	}

	return nil
}

func (s *Service) PushImage(ctx context.Context) error {
	destRef, err := s.registry.GetImageRef()
	if err != nil {
		return fmt.Errorf("getting image reference from registry: %w", err)
	}
	if destRef == "" {
		return fmt.Errorf("container registry returned empty image reference")
	}

	srcRef, err := name.NewTag(s.config.Image)
	if err != nil {
		return fmt.Errorf("parsing source image tag: %w", err)
	}

	img, err := daemon.Image(srcRef, daemon.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("getting image from local daemon: %w", err)
	}

	destTag, err := name.NewTag(destRef)
	if err != nil {
		return fmt.Errorf("parsing destination image tag: %w", err)
	}

	var stdout io.Writer = os.Stdout
	stderr := os.Stderr
	tty := false
	progressChan := make(chan v1.Update, 32)

	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tty = true
	}

	go func() {
		var lastUpdateTime time.Time
		for update := range progressChan {
			if !tty {
				continue
			}

			if update.Error != nil {
				fmt.Fprintf(stderr, "Error: %v\n", update.Error)
				continue
			}
			if update.Total <= 0 {
				continue
			}
			if time.Since(lastUpdateTime) <= 500*time.Millisecond {
				continue
			}
			lastUpdateTime = time.Now()

			percentage := float64(update.Complete) / float64(update.Total) * 100

			fmt.Fprintf(stdout, "Image push: %.2f%% complete\n", percentage)
		}
	}()

	imageConfig, err := img.ConfigFile()
	if err != nil {
		return fmt.Errorf("getting image config file: %w", err)
	}

	slog.InfoContext(ctx, "pushing image to remote registry",
		"source", srcRef,
		"dest", destTag,
		"os", imageConfig.OS,
		"architecture", imageConfig.Architecture)

	startTime := time.Now()
	maxUploadJobs := int(math.Min(16, float64(runtime.NumCPU())))
	options := []remote.Option{
		remote.WithContext(ctx),
		remote.WithProgress(progressChan),
		remote.WithJobs(maxUploadJobs),
		remote.WithPlatform(v1.Platform{
			Architecture: imageConfig.Architecture,
			OS:           imageConfig.OS,
			OSFeatures:   imageConfig.OSFeatures,
			OSVersion:    imageConfig.OSVersion,
			Variant:      imageConfig.Variant,
		}),
	}

	switch s.registry.GetAuthType() {
	case registry.AuthTypeKeychain:
		options = append(options, remote.WithAuthFromKeychain(s.registry.GetKeychain()))
	default:
		auth, err := s.registry.GetAuthentication()
		if err != nil {
			return fmt.Errorf("getting registry authentication: %w", err)
		}
		options = append(options, remote.WithAuth(auth))
	}

	if err := remote.Write(destTag, img, options...); err != nil {
		return fmt.Errorf("pushing image to remote registry: %w", err)
	}

	slog.InfoContext(ctx, "image pushed successfully",
		"source", srcRef,
		"destination", destRef,
		"duration", fmt.Sprintf("%f seconds", time.Since(startTime).Seconds()))

	return nil
}
