package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the deployment configuration record. It is resolved once at
// start-up from DEPLOYCTL_* environment overrides falling back to fixed
// defaults, and never mutated afterwards.
type Config struct {
	ServiceName string `mapstructure:"service" validate:"required,hostname_rfc1123"`
	ProjectID   string `mapstructure:"project"`
	Region      string `mapstructure:"region" validate:"required"`

	Memory         string `mapstructure:"memory" validate:"required"`
	CPU            string `mapstructure:"cpu" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout" validate:"min=1,max=3600"`
	Concurrency    int    `mapstructure:"concurrency" validate:"min=1,max=1000"`
	MaxInstances   int    `mapstructure:"max_instances" validate:"min=1"`
	Port           int    `mapstructure:"port" validate:"min=1,max=65535"`

	Hostname string `mapstructure:"hostname" validate:"omitempty,fqdn"`
	Image    string `mapstructure:"image"`

	Bucket      string   `mapstructure:"bucket"`
	CORSOrigins []string `mapstructure:"-"`

	ServiceAccount       string `mapstructure:"service_account" validate:"omitempty,email"`
	AllowUnauthenticated bool   `mapstructure:"allow_unauthenticated"`

	Build BuildConfig `mapstructure:"build"`
}

type BuildConfig struct {
	Strategy        string       `mapstructure:"strategy" validate:"oneof=docker dagger"`
	Dockerfile      string       `mapstructure:"dockerfile" validate:"required"`
	Context         string       `mapstructure:"context" validate:"required"`
	Cmd             string       `mapstructure:"cmd"`
	Platform        lib.Platform `mapstructure:"platform" validate:"oneof=linux/amd64 linux/arm64"`
	ExcludePatterns []string     `mapstructure:"-"`
}

const (
	BuildStrategyDocker = "docker"
	BuildStrategyDagger = "dagger"
)

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("service", "web")
	v.SetDefault("project", "")
	v.SetDefault("region", "us-central1")

	v.SetDefault("memory", "512Mi")
	v.SetDefault("cpu", "1")
	v.SetDefault("timeout", 300)
	v.SetDefault("concurrency", 80)
	v.SetDefault("max_instances", 10)
	v.SetDefault("port", 8080)

	v.SetDefault("hostname", "")
	v.SetDefault("image", "")

	v.SetDefault("bucket", "")
	v.SetDefault("cors_origins", "*")

	v.SetDefault("service_account", "")
	v.SetDefault("allow_unauthenticated", true)

	v.SetDefault("build.strategy", BuildStrategyDocker)
	v.SetDefault("build.dockerfile", "Dockerfile")
	v.SetDefault("build.context", ".")
	v.SetDefault("build.cmd", "")
	v.SetDefault("build.platform", string(lib.PlatformLinuxAmd64))
	v.SetDefault("build.exclude", "")
}

// Load resolves the configuration from environment variables with the
// DEPLOYCTL_ prefix (nested keys use underscores, e.g.
// DEPLOYCTL_BUILD_DOCKERFILE) falling back to the fixed defaults.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(lib.EnvKeyPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit binds so Unmarshal sees env overrides for every known key
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("binding env for key %q: %w", key, err)
		}
	}

	return NewConfigFromViper(v)
}

// NewConfigFromViper finishes resolution from a prepared viper instance.
// Split out so tests can seed values without touching the process env.
func NewConfigFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.CORSOrigins = lib.SplitList(v.GetString("cors_origins"))
	cfg.Build.ExcludePatterns = lib.SplitList(v.GetString("build.exclude"))

	if cfg.ProjectID == "" {
		cfg.ProjectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if cfg.Image == "" && cfg.ProjectID != "" {
		cfg.Image = fmt.Sprintf("gcr.io/%s/%s:latest", cfg.ProjectID, cfg.ServiceName)
	}

	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w - validating config: %w", lib.BadUserInputError, err)
	}

	return cfg, nil
}

type Entry struct {
	Key, Value string
}

// Describe returns the resolved configuration as ordered key/value pairs for
// the `config` subcommand.
func (c Config) Describe() []Entry {
	return []Entry{
		{"service", c.ServiceName},
		{"project", c.ProjectID},
		{"region", c.Region},
		{"memory", c.Memory},
		{"cpu", c.CPU},
		{"timeout", strconv.Itoa(c.TimeoutSeconds)},
		{"concurrency", strconv.Itoa(c.Concurrency)},
		{"max_instances", strconv.Itoa(c.MaxInstances)},
		{"port", strconv.Itoa(c.Port)},
		{"hostname", c.Hostname},
		{"image", c.Image},
		{"bucket", c.Bucket},
		{"cors_origins", strings.Join(c.CORSOrigins, ",")},
		{"service_account", c.ServiceAccount},
		{"allow_unauthenticated", strconv.FormatBool(c.AllowUnauthenticated)},
		{"build.strategy", c.Build.Strategy},
		{"build.dockerfile", c.Build.Dockerfile},
		{"build.context", c.Build.Context},
		{"build.platform", string(c.Build.Platform)},
	}
}
