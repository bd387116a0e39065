package service

import (
	"context"
	"fmt"
	"os"

	"github.com/AnotherFullstackDev/deployctl/internal/clouds"
	"github.com/AnotherFullstackDev/deployctl/internal/factories"
	"github.com/AnotherFullstackDev/deployctl/internal/health"
	"github.com/AnotherFullstackDev/deployctl/internal/lib"
	"github.com/AnotherFullstackDev/deployctl/internal/orchestrate"
	"github.com/AnotherFullstackDev/deployctl/internal/preflight"
	"github.com/spf13/cobra"
)

func NewDeployCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Build, push, and deploy the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory := factories.NewServiceFactory(locator)

			imageSvc, err := serviceFactory.NewImageService()
			if err != nil {
				return fmt.Errorf("preparing image for service %s: %w", locator.Config.ServiceName, err)
			}

			orchestrator := orchestrate.NewOrchestrator(
				locator.Config,
				preflight.NewService(),
				imageSvc,
				func(ctx context.Context) (orchestrate.BucketManager, error) {
					return serviceFactory.NewBucketService(ctx)
				},
				func(ctx context.Context) (clouds.CloudProvider, error) {
					return serviceFactory.NewCloudProvider(ctx)
				},
				health.NewProber(),
				func(prompt string) (bool, error) {
					return lib.RequestConfirmation(os.Stdin, os.Stdout, prompt)
				},
			)

			return orchestrator.Run(cmd.Context())
		},
	}
}
