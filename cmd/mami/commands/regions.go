package commands

import (
	"github.com/spf13/cobra"

	"github.com/opsee/mami/cmd/mami/handlers"
)

func Regions() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List the regions images can be replicated into",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Regions(cmd.OutOrStdout(), source)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Show what copy_regions \"all\" resolves to for this build region")

	return cmd
}
