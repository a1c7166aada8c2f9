package hcloud

import (
	"context"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureNetwork_CreatesWithSubnet(t *testing.T) {
	var gotOpts hcloud.NetworkCreateOpts
	c := testClient(testConfig())
	c.network = &stubNetworkAPI{
		GetByNameFunc: func(_ context.Context, name string) (*hcloud.Network, *hcloud.Response, error) {
			assert.Equal(t, "interop", name)
			return nil, nil, nil
		},
		CreateFunc: func(_ context.Context, opts hcloud.NetworkCreateOpts) (*hcloud.Network, *hcloud.Response, error) {
			gotOpts = opts
			return &hcloud.Network{ID: 1, Name: opts.Name}, nil, nil
		},
	}

	network, err := c.EnsureNetwork(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "interop", network.Name)
	assert.Equal(t, "10.0.0.0/16", gotOpts.IPRange.String())
	require.Len(t, gotOpts.Subnets, 1)
	assert.Equal(t, hcloud.NetworkSubnetTypeCloud, gotOpts.Subnets[0].Type)
	assert.Equal(t, hcloud.NetworkZoneEUCentral, gotOpts.Subnets[0].NetworkZone)
}

func TestEnsureNetwork_ReusesExisting(t *testing.T) {
	existing := &hcloud.Network{ID: 1, Name: "interop"}
	c := testClient(testConfig())
	c.network = &stubNetworkAPI{
		GetByNameFunc: func(_ context.Context, _ string) (*hcloud.Network, *hcloud.Response, error) {
			return existing, nil, nil
		},
	}

	network, err := c.EnsureNetwork(context.Background())
	require.NoError(t, err)
	assert.Same(t, existing, network)
}

func TestNetworkZoneForLocation(t *testing.T) {
	tests := []struct {
		location string
		want     hcloud.NetworkZone
	}{
		{"hel1", hcloud.NetworkZoneEUCentral},
		{"fsn1", hcloud.NetworkZoneEUCentral},
		{"nbg1", hcloud.NetworkZoneEUCentral},
		{"ash", hcloud.NetworkZoneUSEast},
		{"hil", hcloud.NetworkZoneUSWest},
		{"sin", hcloud.NetworkZoneEUCentral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, networkZoneForLocation(tt.location), "location %s", tt.location)
	}
}

func TestEnsureSSHKey(t *testing.T) {
	t.Run("reuses existing", func(t *testing.T) {
		existing := &hcloud.SSHKey{ID: 5, Name: "interop-deploy"}
		c := testClient(testConfig())
		c.sshKey = &stubSSHKeyAPI{
			GetByNameFunc: func(_ context.Context, _ string) (*hcloud.SSHKey, *hcloud.Response, error) {
				return existing, nil, nil
			},
		}

		key, err := c.EnsureSSHKey(context.Background(), "interop-deploy", "ssh-rsa AAAA")
		require.NoError(t, err)
		assert.Same(t, existing, key)
	})

	t.Run("registers missing", func(t *testing.T) {
		var gotOpts hcloud.SSHKeyCreateOpts
		c := testClient(testConfig())
		c.sshKey = &stubSSHKeyAPI{
			GetByNameFunc: func(_ context.Context, _ string) (*hcloud.SSHKey, *hcloud.Response, error) {
				return nil, nil, nil
			},
			CreateFunc: func(_ context.Context, opts hcloud.SSHKeyCreateOpts) (*hcloud.SSHKey, *hcloud.Response, error) {
				gotOpts = opts
				return &hcloud.SSHKey{ID: 5, Name: opts.Name}, nil, nil
			},
		}

		key, err := c.EnsureSSHKey(context.Background(), "interop-deploy", "ssh-rsa AAAA")
		require.NoError(t, err)
		assert.Equal(t, int64(5), key.ID)
		assert.Equal(t, "ssh-rsa AAAA", gotOpts.PublicKey)
	})
}
