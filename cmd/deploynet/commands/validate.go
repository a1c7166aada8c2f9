package commands

import (
	"github.com/spf13/cobra"

	"github.com/eqlabs/starknet-consensus-interop/cmd/deploynet/handlers"
)

// Validate returns the command that checks every team's validator
// descriptors and keypair files for consistency.
func Validate() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check validator descriptors and keypair files",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Validate(dir)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "validators", "Directory holding per-team validator files")

	return cmd
}
