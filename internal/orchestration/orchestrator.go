// Package orchestration drives the two-stage deployment workflow. The
// infra stage reconciles cloud resources with the declared node set and
// persists a fresh ledger; the app stage derives the network topology
// and deploys a container onto every node. Both stages are idempotent
// and may be re-run at any point.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/eqlabs/starknet-consensus-interop/internal/config"
	"github.com/eqlabs/starknet-consensus-interop/internal/deploy"
	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
	"github.com/eqlabs/starknet-consensus-interop/internal/ledger"
	"github.com/eqlabs/starknet-consensus-interop/internal/platform/hcloud"
	"github.com/eqlabs/starknet-consensus-interop/internal/topology"
)

// Deployer is the per-node deployment surface the orchestrator drives.
// *deploy.Executor satisfies it.
type Deployer interface {
	DeployBootNode(ctx context.Context, t deploy.Target, peerAddrs string) error
	DeployValidator(ctx context.Context, t deploy.Target, bootstrapAddrs, validatorAddrs string) error
}

// Orchestrator runs the deployment stages over a declared node set.
type Orchestrator struct {
	cfg      *config.Config
	provider hcloud.Provisioner
	deployer Deployer
	nodes    descriptor.Set
	store    *ledger.Store

	// Public half of the deployment key, registered with the provider.
	publicKey string

	validatorRuntimes map[string]*config.RuntimeConfig
	bootRuntimes      map[string]*config.RuntimeConfig
}

// New creates an orchestrator for the given node set.
func New(cfg *config.Config, provider hcloud.Provisioner, deployer Deployer, nodes descriptor.Set, publicKey []byte) *Orchestrator {
	return &Orchestrator{
		cfg:               cfg,
		provider:          provider,
		deployer:          deployer,
		nodes:             nodes,
		store:             &ledger.Store{Path: cfg.LedgerPath},
		publicKey:         string(publicKey),
		validatorRuntimes: make(map[string]*config.RuntimeConfig),
		bootRuntimes:      make(map[string]*config.RuntimeConfig),
	}
}

// Run executes the selected stage(s).
func (o *Orchestrator) Run(ctx context.Context, stage Stage) error {
	if err := o.loadRuntimes(); err != nil {
		return err
	}

	if stage == StageInfra || stage == StageAll {
		if err := o.Infra(ctx); err != nil {
			return fmt.Errorf("infra stage: %w", err)
		}
	}
	if stage == StageApp || stage == StageAll {
		if err := o.App(ctx); err != nil {
			return fmt.Errorf("app stage: %w", err)
		}
	}
	return nil
}

// loadRuntimes resolves every team's runtime config up front so a
// missing config file fails before any side effect.
func (o *Orchestrator) loadRuntimes() error {
	for _, node := range o.nodes.Validators {
		if _, ok := o.validatorRuntimes[node.Team]; ok {
			continue
		}
		path, err := o.cfg.ValidatorRunFile(node.Team)
		if err != nil {
			return fmt.Errorf("team %s: %w", node.Team, err)
		}
		rc, err := config.LoadRuntime(path)
		if err != nil {
			return fmt.Errorf("team %s: %w", node.Team, err)
		}
		o.validatorRuntimes[node.Team] = rc
	}
	for _, node := range o.nodes.BootNodes {
		if _, ok := o.bootRuntimes[node.Team]; ok {
			continue
		}
		path, err := o.cfg.BootRunFile(node.Team)
		if err != nil {
			return fmt.Errorf("team %s: %w", node.Team, err)
		}
		rc, err := config.LoadRuntime(path)
		if err != nil {
			return fmt.Errorf("team %s: %w", node.Team, err)
		}
		o.bootRuntimes[node.Team] = rc
	}
	return nil
}

// Infra reconciles cloud resources with the node set. Any create or
// attach failure aborts the stage; the ledger is written once, at the
// end, from fully collected data.
func (o *Orchestrator) Infra(ctx context.Context) error {
	log.Printf("Running infra stage for %d node(s)", len(o.nodes.All()))

	key, err := o.provider.EnsureSSHKey(ctx, o.sshKeyName(), o.publicKey)
	if err != nil {
		return err
	}
	network, err := o.provider.EnsureNetwork(ctx)
	if err != nil {
		return err
	}

	for _, node := range o.nodes.All() {
		server, err := o.provider.EnsureServer(ctx, node, network, key)
		if err != nil {
			return err
		}
		if !node.IsValidator() {
			continue
		}
		volume, err := o.provider.EnsureVolume(ctx, volumeName(node), o.validatorRuntimes[node.Team].DBDiskGB)
		if err != nil {
			return err
		}
		if err := o.provider.AttachVolume(ctx, volume, server); err != nil {
			return err
		}
	}

	if err := o.provider.EnsureSSHFirewall(ctx); err != nil {
		return err
	}
	if err := o.provider.EnsureP2PFirewall(ctx, topology.DerivePorts(o.nodes.All())); err != nil {
		return err
	}

	led := ledger.New(o.cfg.ProviderScope())
	for _, node := range o.nodes.BootNodes {
		rec, err := o.resolveRecord(ctx, node)
		if err != nil {
			return err
		}
		led.BootNodes[node.NodeName] = rec
	}
	for _, node := range o.nodes.Validators {
		rec, err := o.resolveRecord(ctx, node)
		if err != nil {
			return err
		}
		led.Validators[node.NodeName] = rec
	}

	if err := o.store.Save(led); err != nil {
		return err
	}
	log.Printf("Infra stage complete, ledger written to %s", o.cfg.LedgerPath)
	return nil
}

func (o *Orchestrator) resolveRecord(ctx context.Context, node descriptor.Node) (ledger.NodeRecord, error) {
	external, err := o.provider.ExternalIP(ctx, node.NodeName)
	if err != nil {
		return ledger.NodeRecord{}, err
	}
	internal, err := o.provider.InternalIP(ctx, node.NodeName)
	if err != nil {
		return ledger.NodeRecord{}, err
	}
	return ledger.NodeRecord{
		NodeName:   node.NodeName,
		Team:       node.Team,
		PeerID:     node.PeerID,
		Address:    node.Address,
		ExternalIP: external,
		InternalIP: internal,
	}, nil
}

// App deploys every node's container. Boot nodes go first, peering
// among themselves; validators then bootstrap from the full boot-node
// set and peer with the other validators. With no boot nodes declared,
// validators bootstrap pairwise from each other instead. A node's
// deployment failure does not stop the remaining nodes.
func (o *Orchestrator) App(ctx context.Context) error {
	led, err := o.store.Load()
	if err != nil {
		return err
	}

	externalIPs, internalIPs, err := o.resolveIPs(ctx, led)
	if err != nil {
		return err
	}

	var failures []error
	if len(o.nodes.BootNodes) > 0 {
		bootPeers := topology.BuildPeerAddresses(o.nodes.BootNodes, internalIPs)
		for _, node := range o.nodes.BootNodes {
			target := deploy.Target{
				Node:       node,
				ExternalIP: externalIPs[node.NodeName],
				Runtime:    o.bootRuntimes[node.Team],
			}
			if err := o.deployer.DeployBootNode(ctx, target, bootPeers[node.NodeName]); err != nil {
				log.Printf("Boot node %s failed: %v", node.NodeName, err)
				failures = append(failures, err)
			}
		}

		bootstrap := topology.BuildBootAddresses(o.nodes.BootNodes, internalIPs)
		validatorPeers := topology.BuildPeerAddresses(o.nodes.Validators, internalIPs)
		for _, node := range o.nodes.Validators {
			if err := o.deployValidator(ctx, node, externalIPs, bootstrap, validatorPeers[node.NodeName]); err != nil {
				log.Printf("Validator %s failed: %v", node.NodeName, err)
				failures = append(failures, err)
			}
		}
	} else {
		// No boot nodes declared; validators bootstrap pairwise from
		// each other.
		peers := topology.BuildPeerAddresses(o.nodes.Validators, internalIPs)
		for _, node := range o.nodes.Validators {
			if err := o.deployValidator(ctx, node, externalIPs, peers[node.NodeName], peers[node.NodeName]); err != nil {
				log.Printf("Validator %s failed: %v", node.NodeName, err)
				failures = append(failures, err)
			}
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d node(s) failed to deploy: %w", len(failures), errors.Join(failures...))
	}
	log.Printf("App stage complete")
	return nil
}

func (o *Orchestrator) deployValidator(ctx context.Context, node descriptor.Node, externalIPs map[string]string, bootstrap, validatorAddrs string) error {
	volume, err := o.provider.GetVolume(ctx, volumeName(node))
	if err != nil {
		return err
	}
	target := deploy.Target{
		Node:       node,
		ExternalIP: externalIPs[node.NodeName],
		Runtime:    o.validatorRuntimes[node.Team],
		DataDevice: volume.LinuxDevice,
	}
	return o.deployer.DeployValidator(ctx, target, bootstrap, validatorAddrs)
}

// resolveIPs fills each node's addresses from the ledger, querying the
// provider only for addresses the ledger does not carry.
func (o *Orchestrator) resolveIPs(ctx context.Context, led *ledger.Ledger) (external, internal map[string]string, err error) {
	external = make(map[string]string)
	internal = make(map[string]string)
	for _, node := range o.nodes.All() {
		rec, _ := led.Record(node.NodeName)
		if rec.ExternalIP != "" {
			external[node.NodeName] = rec.ExternalIP
		} else {
			ip, err := o.provider.ExternalIP(ctx, node.NodeName)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to resolve external IP of %s: %w", node.NodeName, err)
			}
			external[node.NodeName] = ip
		}
		if rec.InternalIP != "" {
			internal[node.NodeName] = rec.InternalIP
		} else {
			ip, err := o.provider.InternalIP(ctx, node.NodeName)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to resolve internal IP of %s: %w", node.NodeName, err)
			}
			internal[node.NodeName] = ip
		}
	}
	return external, internal, nil
}

func (o *Orchestrator) sshKeyName() string {
	return o.cfg.Network + "-deploy"
}

func volumeName(node descriptor.Node) string {
	return node.NodeName + "-db"
}
