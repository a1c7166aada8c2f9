package commands

import (
	"github.com/spf13/cobra"

	"github.com/eqlabs/starknet-consensus-interop/cmd/deploynet/handlers"
)

// Merge returns the command that collects every team's validator
// descriptors into the merged network-config file.
func Merge() *cobra.Command {
	var dir, output string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge per-team validator descriptors into one validators.json",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Merge(dir, output)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "validators", "Directory holding per-team validator files")
	cmd.Flags().StringVarP(&output, "output", "o", "network-config/validators.json", "Merged output file")

	return cmd
}
