package service

import (
	"fmt"

	"github.com/AnotherFullstackDev/deployctl/internal/factories"
	"github.com/spf13/cobra"
)

func NewBuildCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	var push bool

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the service's container image without deploying",
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory := factories.NewServiceFactory(locator)

			imageSvc, err := serviceFactory.NewImageService()
			if err != nil {
				return fmt.Errorf("preparing image for service %s: %w", locator.Config.ServiceName, err)
			}

			ctx := cmd.Context()

			if err := imageSvc.BuildImage(ctx); err != nil {
				return fmt.Errorf("building image for service %s: %w", locator.Config.ServiceName, err)
			}

			if !push {
				return nil
			}

			if err := imageSvc.PushImage(ctx); err != nil {
				return fmt.Errorf("pushing image for service %s: %w", locator.Config.ServiceName, err)
			}

			return nil
		},
	}

	buildCmd.PersistentFlags().BoolVar(&push, "push", false, "Push the image to its registry after building")

	return buildCmd
}
