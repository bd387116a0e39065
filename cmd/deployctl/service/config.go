package service

import (
	"github.com/AnotherFullstackDev/deployctl/internal/factories"
	"github.com/AnotherFullstackDev/deployctl/internal/output"
	"github.com/spf13/cobra"
)

func NewConfigCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved deployment configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, entry := range locator.Config.Describe() {
				output.KeyValue(entry.Key, entry.Value)
			}
			return nil
		},
	}
}
