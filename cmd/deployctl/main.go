package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/AnotherFullstackDev/deployctl/cmd/deployctl/service"
	"github.com/AnotherFullstackDev/deployctl/internal/config"
	"github.com/AnotherFullstackDev/deployctl/internal/factories"
	"github.com/AnotherFullstackDev/deployctl/internal/keyring"
	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/AnotherFullstackDev/deployctl/internal/output"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:           "deployctl",
	Short:         "Deployctl builds, pushes, and deploys a containerized service to Cloud Run.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

const keyringServiceName = "deployctl"

func main() {
	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	locator := factories.NewSharedServicesLocator(cfg, keyring.MustNewService(keyringServiceName))

	RootCmd.AddCommand(
		service.NewDeployCmd(locator),
		service.NewBuildCmd(locator),
		service.NewConfigCmd(locator),
	)

	if err := RootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv(lib.LogLevelEnv)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))
}
