// Package preflight verifies the orchestrator's preconditions before any
// build or network call: required tooling, a resolvable target project, and
// a determined storage bucket.
package preflight

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/AnotherFullstackDev/deployctl/internal/config"
	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/AnotherFullstackDev/deployctl/internal/tags"
)

type Service struct {
	lookPath   func(file string) (string, error)
	statFile   func(name string) (os.FileInfo, error)
	isTerminal func(in io.Reader) bool
	in         io.Reader
	out        io.Writer
}

func NewService() *Service {
	return &Service{
		lookPath:   exec.LookPath,
		statFile:   os.Stat,
		isTerminal: lib.IsTerminalReader,
		in:         os.Stdin,
		out:        os.Stdout,
	}
}

// Result carries values resolved during preflight. The configuration record
// itself stays immutable; the orchestrator passes these along explicitly.
type Result struct {
	Bucket string
}

// Run performs the precondition checks in order and fails on the first
// violation. No network calls are made here.
func (s *Service) Run(cfg config.Config) (Result, error) {
	for _, tool := range requiredTools(cfg) {
		if _, err := s.lookPath(tool); err != nil {
			return Result{}, fmt.Errorf("%w - required tool %q not found in PATH", lib.BadUserInputError, tool)
		}
	}

	if cfg.ProjectID == "" {
		return Result{}, fmt.Errorf("%w - no target project configured, set %s_PROJECT or GOOGLE_CLOUD_PROJECT", lib.BadUserInputError, lib.EnvKeyPrefix)
	}

	if cfg.Build.Cmd == "" {
		dockerfile := cfg.Build.Dockerfile
		if !filepath.IsAbs(dockerfile) {
			dockerfile = filepath.Join(cfg.Build.Context, dockerfile)
		}
		if _, err := s.statFile(dockerfile); err != nil {
			return Result{}, fmt.Errorf("%w - dockerfile %s not found: %v", lib.BadUserInputError, dockerfile, err)
		}
	}

	bucket, err := s.resolveBucket(cfg)
	if err != nil {
		return Result{}, err
	}

	return Result{Bucket: bucket}, nil
}

func (s *Service) resolveBucket(cfg config.Config) (string, error) {
	if cfg.Bucket != "" {
		return cfg.Bucket, nil
	}

	if !s.isTerminal(s.in) {
		return "", fmt.Errorf("%w - no storage bucket configured and input is not interactive, set %s_BUCKET", lib.BadUserInputError, lib.EnvKeyPrefix)
	}

	bucket, err := lib.RequestLineInput(s.in, s.out, "Storage bucket for static assets")
	if err != nil {
		return "", fmt.Errorf("requesting storage bucket: %w", err)
	}
	if bucket == "" {
		return "", fmt.Errorf("%w - no storage bucket provided", lib.BadUserInputError)
	}

	return bucket, nil
}

// The docker CLI serves both build strategies: the default build shells out
// to it, and the dagger strategy provisions its engine through it and loads
// the result into the local daemon. The push always goes through the daemon.
// Images tagged from the current checkout additionally need git tooling.
func requiredTools(cfg config.Config) []string {
	tools := []string{"docker"}
	if tags.HasGitPlaceholders(cfg.Image) {
		tools = append(tools, "git")
	}
	return tools
}
