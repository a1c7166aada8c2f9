// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"

	"github.com/eqlabs/starknet-consensus-interop/internal/config"
	"github.com/eqlabs/starknet-consensus-interop/internal/deploy"
	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
	"github.com/eqlabs/starknet-consensus-interop/internal/orchestration"
	"github.com/eqlabs/starknet-consensus-interop/internal/platform/hcloud"
	"github.com/eqlabs/starknet-consensus-interop/internal/platform/ssh"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig builds the boundary configuration from the environment.
	loadConfig = config.FromEnv

	// loadSet loads the full node descriptor set.
	loadSet = descriptor.LoadSet

	// ensureKeyPair loads or generates the deployment SSH key pair.
	ensureKeyPair = ssh.EnsureKeyPair

	// newProvisioner creates the cloud provisioner.
	newProvisioner = func(cfg *config.Config) hcloud.Provisioner {
		return hcloud.NewClient(cfg)
	}

	// newDeployer creates the per-node deployment executor.
	newDeployer = func(cfg *config.Config, privateKey []byte) orchestration.Deployer {
		return deploy.NewExecutor(cfg, privateKey)
	}
)

// Deploy runs the selected deployment stage(s) over the declared node set.
//
// Configuration errors (missing environment variables, missing node
// descriptors or runtime configs) are reported before any cloud side
// effect occurs.
func Deploy(ctx context.Context, stageName string) error {
	stage, err := orchestration.ParseStage(stageName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	nodes, err := loadSet(cfg.ValidatorsFile, cfg.ValidatorsDir)
	if err != nil {
		return err
	}
	if len(nodes.All()) == 0 {
		return fmt.Errorf("no nodes declared in %s or %s", cfg.ValidatorsFile, cfg.ValidatorsDir)
	}

	keyPair, err := ensureKeyPair(cfg.SSHKeyPath)
	if err != nil {
		return err
	}

	provider := newProvisioner(cfg)
	deployer := newDeployer(cfg, keyPair.PrivateKey)
	orch := orchestration.New(cfg, provider, deployer, nodes, keyPair.PublicKey)
	return orch.Run(ctx, stage)
}
