package image

import "github.com/AnotherFullstackDev/deployctl/internal/lib"

// Config carries the already-resolved image reference and build settings.
// Tag templates are resolved by the factory before this struct is built.
type Config struct {
	// Image is the fully resolved reference the build tags and the push reads
	// from the local daemon.
	Image string
	Build BuildOptions
}

type BuildOptions struct {
	Strategy   string
	Dockerfile string
	Context    string
	// Cmd overrides the default `docker build` invocation. A single element
	// is run through `sh -c`.
	Cmd             []string
	Platform        lib.Platform
	ExcludePatterns []string
}

const (
	BuildStrategyDocker = "docker"
	BuildStrategyDagger = "dagger"
)
