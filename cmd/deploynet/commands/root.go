// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated
// to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the deploynet CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploynet",
		Short: "Provision and deploy a Starknet consensus interop network on Hetzner Cloud",
	}

	cmd.AddCommand(Deploy())
	cmd.AddCommand(Compose())
	cmd.AddCommand(Validate())
	cmd.AddCommand(Merge())
	cmd.AddCommand(Version())

	return cmd
}
