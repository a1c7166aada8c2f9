package commands

import (
	"github.com/spf13/cobra"

	"github.com/eqlabs/starknet-consensus-interop/cmd/deploynet/handlers"
)

// Compose returns the command that renders the validator set into a
// docker-compose file for local runs.
func Compose() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Generate a docker-compose file for running validators locally",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Compose(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "docker-compose.yml", "Output file path")

	return cmd
}
