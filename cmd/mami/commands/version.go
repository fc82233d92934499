package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time through -ldflags.
var version = "dev"

func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mami version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
