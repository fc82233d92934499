// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the mami CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mami",
		Short: "Build machine images from declarative provisioning configuration",
	}

	cmd.AddCommand(Build())
	cmd.AddCommand(Regions())
	cmd.AddCommand(Version())

	return cmd
}
