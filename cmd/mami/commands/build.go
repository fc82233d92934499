package commands

import (
	"github.com/spf13/cobra"

	"github.com/opsee/mami/cmd/mami/handlers"
)

func Build() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run an image build from a configuration file",
		Long: `Build provisions a temporary instance, runs the configured steps over
SSH, and optionally converts the instance into a machine image replicated
across regions. The instance is disposed of according to the outcome.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Build(cmd.Context(), configPath, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to build configuration file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the configuration and print the plan without building")

	return cmd
}
