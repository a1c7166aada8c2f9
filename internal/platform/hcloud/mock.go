package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
	"github.com/eqlabs/starknet-consensus-interop/internal/topology"
)

// MockProvisioner is a mock implementation of Provisioner.
type MockProvisioner struct {
	EnsureSSHKeyFunc      func(ctx context.Context, name, publicKey string) (*hcloud.SSHKey, error)
	EnsureNetworkFunc     func(ctx context.Context) (*hcloud.Network, error)
	EnsureServerFunc      func(ctx context.Context, node descriptor.Node, network *hcloud.Network, key *hcloud.SSHKey) (*hcloud.Server, error)
	EnsureVolumeFunc      func(ctx context.Context, name string, sizeGB int) (*hcloud.Volume, error)
	AttachVolumeFunc      func(ctx context.Context, volume *hcloud.Volume, server *hcloud.Server) error
	GetVolumeFunc         func(ctx context.Context, name string) (*hcloud.Volume, error)
	EnsureSSHFirewallFunc func(ctx context.Context) error
	EnsureP2PFirewallFunc func(ctx context.Context, ports []topology.PortSpec) error
	ExternalIPFunc        func(ctx context.Context, name string) (string, error)
	InternalIPFunc        func(ctx context.Context, name string) (string, error)
}

// Ensure interface compliance
var _ Provisioner = (*MockProvisioner)(nil)

// EnsureSSHKey mocks SSH key registration.
func (m *MockProvisioner) EnsureSSHKey(ctx context.Context, name, publicKey string) (*hcloud.SSHKey, error) {
	if m.EnsureSSHKeyFunc != nil {
		return m.EnsureSSHKeyFunc(ctx, name, publicKey)
	}
	return &hcloud.SSHKey{ID: 1, Name: name}, nil
}

// EnsureNetwork mocks private network creation.
func (m *MockProvisioner) EnsureNetwork(ctx context.Context) (*hcloud.Network, error) {
	if m.EnsureNetworkFunc != nil {
		return m.EnsureNetworkFunc(ctx)
	}
	return &hcloud.Network{ID: 1, Name: "mock-network"}, nil
}

// EnsureServer mocks instance creation.
func (m *MockProvisioner) EnsureServer(ctx context.Context, node descriptor.Node, network *hcloud.Network, key *hcloud.SSHKey) (*hcloud.Server, error) {
	if m.EnsureServerFunc != nil {
		return m.EnsureServerFunc(ctx, node, network, key)
	}
	return &hcloud.Server{ID: 1, Name: node.NodeName}, nil
}

// EnsureVolume mocks volume creation.
func (m *MockProvisioner) EnsureVolume(ctx context.Context, name string, sizeGB int) (*hcloud.Volume, error) {
	if m.EnsureVolumeFunc != nil {
		return m.EnsureVolumeFunc(ctx, name, sizeGB)
	}
	return &hcloud.Volume{ID: 1, Name: name, Size: sizeGB}, nil
}

// AttachVolume mocks volume attachment.
func (m *MockProvisioner) AttachVolume(ctx context.Context, volume *hcloud.Volume, server *hcloud.Server) error {
	if m.AttachVolumeFunc != nil {
		return m.AttachVolumeFunc(ctx, volume, server)
	}
	return nil
}

// GetVolume mocks volume lookup.
func (m *MockProvisioner) GetVolume(ctx context.Context, name string) (*hcloud.Volume, error) {
	if m.GetVolumeFunc != nil {
		return m.GetVolumeFunc(ctx, name)
	}
	return &hcloud.Volume{ID: 1, Name: name, LinuxDevice: "/dev/disk/by-id/scsi-0HC_Volume_1"}, nil
}

// EnsureSSHFirewall mocks the SSH firewall.
func (m *MockProvisioner) EnsureSSHFirewall(ctx context.Context) error {
	if m.EnsureSSHFirewallFunc != nil {
		return m.EnsureSSHFirewallFunc(ctx)
	}
	return nil
}

// EnsureP2PFirewall mocks the consensus port firewall.
func (m *MockProvisioner) EnsureP2PFirewall(ctx context.Context, ports []topology.PortSpec) error {
	if m.EnsureP2PFirewallFunc != nil {
		return m.EnsureP2PFirewallFunc(ctx, ports)
	}
	return nil
}

// ExternalIP mocks public address resolution.
func (m *MockProvisioner) ExternalIP(ctx context.Context, name string) (string, error) {
	if m.ExternalIPFunc != nil {
		return m.ExternalIPFunc(ctx, name)
	}
	return "203.0.113.1", nil
}

// InternalIP mocks private address resolution.
func (m *MockProvisioner) InternalIP(ctx context.Context, name string) (string, error) {
	if m.InternalIPFunc != nil {
		return m.InternalIPFunc(ctx, name)
	}
	return "10.0.0.2", nil
}
