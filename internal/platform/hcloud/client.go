// Package hcloud wraps the Hetzner Cloud API behind the provisioning
// operations the orchestrator needs. All create/ensure operations are
// idempotent by name lookup so a partially failed run can simply be
// re-invoked.
package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/eqlabs/starknet-consensus-interop/internal/config"
	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
	"github.com/eqlabs/starknet-consensus-interop/internal/topology"
)

// Narrow interfaces over the hcloud services we use, so tests can stub
// the control plane.

// ServerAPI is the subset of the hcloud server service used here.
type ServerAPI interface {
	GetByName(ctx context.Context, name string) (*hcloud.Server, *hcloud.Response, error)
	Create(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, *hcloud.Response, error)
	Update(ctx context.Context, server *hcloud.Server, opts hcloud.ServerUpdateOpts) (*hcloud.Server, *hcloud.Response, error)
	Poweron(ctx context.Context, server *hcloud.Server) (*hcloud.Action, *hcloud.Response, error)
}

// VolumeAPI is the subset of the hcloud volume service used here.
type VolumeAPI interface {
	GetByName(ctx context.Context, name string) (*hcloud.Volume, *hcloud.Response, error)
	Create(ctx context.Context, opts hcloud.VolumeCreateOpts) (hcloud.VolumeCreateResult, *hcloud.Response, error)
	Attach(ctx context.Context, volume *hcloud.Volume, server *hcloud.Server) (*hcloud.Action, *hcloud.Response, error)
}

// FirewallAPI is the subset of the hcloud firewall service used here.
type FirewallAPI interface {
	GetByName(ctx context.Context, name string) (*hcloud.Firewall, *hcloud.Response, error)
	Create(ctx context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, *hcloud.Response, error)
}

// NetworkAPI is the subset of the hcloud network service used here.
type NetworkAPI interface {
	GetByName(ctx context.Context, name string) (*hcloud.Network, *hcloud.Response, error)
	Create(ctx context.Context, opts hcloud.NetworkCreateOpts) (*hcloud.Network, *hcloud.Response, error)
}

// SSHKeyAPI is the subset of the hcloud SSH key service used here.
type SSHKeyAPI interface {
	GetByName(ctx context.Context, name string) (*hcloud.SSHKey, *hcloud.Response, error)
	Create(ctx context.Context, opts hcloud.SSHKeyCreateOpts) (*hcloud.SSHKey, *hcloud.Response, error)
}

// PrimaryIPAPI is the subset of the hcloud primary IP service used here.
type PrimaryIPAPI interface {
	Create(ctx context.Context, opts hcloud.PrimaryIPCreateOpts) (*hcloud.PrimaryIPCreateResult, *hcloud.Response, error)
}

// ActionAPI is the subset of the hcloud action service used here.
type ActionAPI interface {
	GetByID(ctx context.Context, id int64) (*hcloud.Action, *hcloud.Response, error)
}

// Provisioner is the resource provisioning contract the orchestrator
// consumes.
type Provisioner interface {
	EnsureSSHKey(ctx context.Context, name, publicKey string) (*hcloud.SSHKey, error)
	EnsureNetwork(ctx context.Context) (*hcloud.Network, error)
	EnsureServer(ctx context.Context, node descriptor.Node, network *hcloud.Network, key *hcloud.SSHKey) (*hcloud.Server, error)
	EnsureVolume(ctx context.Context, name string, sizeGB int) (*hcloud.Volume, error)
	AttachVolume(ctx context.Context, volume *hcloud.Volume, server *hcloud.Server) error
	GetVolume(ctx context.Context, name string) (*hcloud.Volume, error)
	EnsureSSHFirewall(ctx context.Context) error
	EnsureP2PFirewall(ctx context.Context, ports []topology.PortSpec) error
	ExternalIP(ctx context.Context, name string) (string, error)
	InternalIP(ctx context.Context, name string) (string, error)
}

// Client implements Provisioner against the Hetzner Cloud API.
type Client struct {
	cfg *config.Config

	server    ServerAPI
	volume    VolumeAPI
	firewall  FirewallAPI
	network   NetworkAPI
	sshKey    SSHKeyAPI
	primaryIP PrimaryIPAPI
	action    ActionAPI
}

var _ Provisioner = (*Client)(nil)

// NewClient creates a provisioner talking to the real Hetzner Cloud API.
func NewClient(cfg *config.Config) *Client {
	hc := hcloud.NewClient(hcloud.WithToken(cfg.Token))
	return &Client{
		cfg:       cfg,
		server:    &hc.Server,
		volume:    &hc.Volume,
		firewall:  &hc.Firewall,
		network:   &hc.Network,
		sshKey:    &hc.SSHKey,
		primaryIP: &hc.PrimaryIP,
		action:    &hc.Action,
	}
}
