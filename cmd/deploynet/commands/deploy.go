package commands

import (
	"github.com/spf13/cobra"

	"github.com/eqlabs/starknet-consensus-interop/cmd/deploynet/handlers"
)

// Deploy returns the command that provisions instances and deploys node
// containers.
//
// Flags:
//
//	--stage: which stage to run: infra, app, or all (default: all)
//
// Environment variables:
//
//	HCLOUD_TOKEN:    Hetzner Cloud API token (required)
//	HCLOUD_LOCATION: Hetzner location, e.g. hel1 (required)
func Deploy() *cobra.Command {
	var stage string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Provision instances and deploy node containers",
		Long: `Provision Hetzner Cloud instances for every declared node and deploy
the team containers onto them.

The infra stage creates instances, data volumes, the private network and
firewalls, then writes the deployment ledger. The app stage reads the
ledger and (re)starts every node's container with freshly derived peer
addresses. Both stages are idempotent.

Examples:
  # Provision and deploy everything
  deploynet deploy

  # Re-run only the container deployment
  deploynet deploy --stage app`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), stage)
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "all", "Stage to run: infra, app, or all")

	return cmd
}
