package hcloud

import (
	"context"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/eqlabs/starknet-consensus-interop/internal/config"
)

// Stubs over the narrow service interfaces so tests can script the
// control plane without HTTP.

type stubServerAPI struct {
	GetByNameFunc func(ctx context.Context, name string) (*hcloud.Server, *hcloud.Response, error)
	CreateFunc    func(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, *hcloud.Response, error)
	UpdateFunc    func(ctx context.Context, server *hcloud.Server, opts hcloud.ServerUpdateOpts) (*hcloud.Server, *hcloud.Response, error)
	PoweronFunc   func(ctx context.Context, server *hcloud.Server) (*hcloud.Action, *hcloud.Response, error)
}

func (s *stubServerAPI) GetByName(ctx context.Context, name string) (*hcloud.Server, *hcloud.Response, error) {
	return s.GetByNameFunc(ctx, name)
}

func (s *stubServerAPI) Create(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, *hcloud.Response, error) {
	return s.CreateFunc(ctx, opts)
}

func (s *stubServerAPI) Update(ctx context.Context, server *hcloud.Server, opts hcloud.ServerUpdateOpts) (*hcloud.Server, *hcloud.Response, error) {
	return s.UpdateFunc(ctx, server, opts)
}

func (s *stubServerAPI) Poweron(ctx context.Context, server *hcloud.Server) (*hcloud.Action, *hcloud.Response, error) {
	return s.PoweronFunc(ctx, server)
}

type stubVolumeAPI struct {
	GetByNameFunc func(ctx context.Context, name string) (*hcloud.Volume, *hcloud.Response, error)
	CreateFunc    func(ctx context.Context, opts hcloud.VolumeCreateOpts) (hcloud.VolumeCreateResult, *hcloud.Response, error)
	AttachFunc    func(ctx context.Context, volume *hcloud.Volume, server *hcloud.Server) (*hcloud.Action, *hcloud.Response, error)
}

func (s *stubVolumeAPI) GetByName(ctx context.Context, name string) (*hcloud.Volume, *hcloud.Response, error) {
	return s.GetByNameFunc(ctx, name)
}

func (s *stubVolumeAPI) Create(ctx context.Context, opts hcloud.VolumeCreateOpts) (hcloud.VolumeCreateResult, *hcloud.Response, error) {
	return s.CreateFunc(ctx, opts)
}

func (s *stubVolumeAPI) Attach(ctx context.Context, volume *hcloud.Volume, server *hcloud.Server) (*hcloud.Action, *hcloud.Response, error) {
	return s.AttachFunc(ctx, volume, server)
}

type stubFirewallAPI struct {
	GetByNameFunc func(ctx context.Context, name string) (*hcloud.Firewall, *hcloud.Response, error)
	CreateFunc    func(ctx context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, *hcloud.Response, error)
}

func (s *stubFirewallAPI) GetByName(ctx context.Context, name string) (*hcloud.Firewall, *hcloud.Response, error) {
	return s.GetByNameFunc(ctx, name)
}

func (s *stubFirewallAPI) Create(ctx context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, *hcloud.Response, error) {
	return s.CreateFunc(ctx, opts)
}

type stubNetworkAPI struct {
	GetByNameFunc func(ctx context.Context, name string) (*hcloud.Network, *hcloud.Response, error)
	CreateFunc    func(ctx context.Context, opts hcloud.NetworkCreateOpts) (*hcloud.Network, *hcloud.Response, error)
}

func (s *stubNetworkAPI) GetByName(ctx context.Context, name string) (*hcloud.Network, *hcloud.Response, error) {
	return s.GetByNameFunc(ctx, name)
}

func (s *stubNetworkAPI) Create(ctx context.Context, opts hcloud.NetworkCreateOpts) (*hcloud.Network, *hcloud.Response, error) {
	return s.CreateFunc(ctx, opts)
}

type stubSSHKeyAPI struct {
	GetByNameFunc func(ctx context.Context, name string) (*hcloud.SSHKey, *hcloud.Response, error)
	CreateFunc    func(ctx context.Context, opts hcloud.SSHKeyCreateOpts) (*hcloud.SSHKey, *hcloud.Response, error)
}

func (s *stubSSHKeyAPI) GetByName(ctx context.Context, name string) (*hcloud.SSHKey, *hcloud.Response, error) {
	return s.GetByNameFunc(ctx, name)
}

func (s *stubSSHKeyAPI) Create(ctx context.Context, opts hcloud.SSHKeyCreateOpts) (*hcloud.SSHKey, *hcloud.Response, error) {
	return s.CreateFunc(ctx, opts)
}

type stubPrimaryIPAPI struct {
	CreateFunc func(ctx context.Context, opts hcloud.PrimaryIPCreateOpts) (*hcloud.PrimaryIPCreateResult, *hcloud.Response, error)
}

func (s *stubPrimaryIPAPI) Create(ctx context.Context, opts hcloud.PrimaryIPCreateOpts) (*hcloud.PrimaryIPCreateResult, *hcloud.Response, error) {
	return s.CreateFunc(ctx, opts)
}

type stubActionAPI struct {
	GetByIDFunc func(ctx context.Context, id int64) (*hcloud.Action, *hcloud.Response, error)
}

func (s *stubActionAPI) GetByID(ctx context.Context, id int64) (*hcloud.Action, *hcloud.Response, error) {
	return s.GetByIDFunc(ctx, id)
}

// succeedingActions reports every polled action as done.
func succeedingActions() *stubActionAPI {
	return &stubActionAPI{
		GetByIDFunc: func(_ context.Context, id int64) (*hcloud.Action, *hcloud.Response, error) {
			return &hcloud.Action{ID: id, Status: hcloud.ActionStatusSuccess}, nil, nil
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Token:       "test-token",
		Location:    "hel1",
		Network:     "interop",
		ServerType:  "cx22",
		Image:       "debian-12",
		NetworkCIDR: "10.0.0.0/16",
		Timeouts: &config.Timeouts{
			OperationPoll: time.Millisecond,
			InstanceStart: time.Second,
			AddressAssign: time.Second,
		},
	}
}

func testClient(cfg *config.Config) *Client {
	return &Client{cfg: cfg, action: succeedingActions()}
}
