package hcloud

import (
	"context"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eqlabs/starknet-consensus-interop/internal/topology"
)

func TestEnsureSSHFirewall_CreatesWithSelector(t *testing.T) {
	var gotOpts hcloud.FirewallCreateOpts
	c := testClient(testConfig())
	c.firewall = &stubFirewallAPI{
		GetByNameFunc: func(_ context.Context, _ string) (*hcloud.Firewall, *hcloud.Response, error) {
			return nil, nil, nil
		},
		CreateFunc: func(_ context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, *hcloud.Response, error) {
			gotOpts = opts
			return hcloud.FirewallCreateResult{
				Firewall: &hcloud.Firewall{ID: 1, Name: opts.Name},
				Actions:  []*hcloud.Action{{ID: 1}},
			}, nil, nil
		},
	}

	require.NoError(t, c.EnsureSSHFirewall(context.Background()))
	assert.Equal(t, FirewallSSH, gotOpts.Name)
	require.Len(t, gotOpts.Rules, 1)
	assert.Equal(t, hcloud.FirewallRuleProtocolTCP, gotOpts.Rules[0].Protocol)
	assert.Equal(t, "22", *gotOpts.Rules[0].Port)
	assert.Len(t, gotOpts.Rules[0].SourceIPs, 2)
	require.Len(t, gotOpts.ApplyTo, 1)
	assert.Equal(t, RoleSelector, gotOpts.ApplyTo[0].LabelSelector.Selector)
}

func TestEnsureSSHFirewall_ExistingUntouched(t *testing.T) {
	c := testClient(testConfig())
	c.firewall = &stubFirewallAPI{
		GetByNameFunc: func(_ context.Context, _ string) (*hcloud.Firewall, *hcloud.Response, error) {
			return &hcloud.Firewall{ID: 1, Name: FirewallSSH}, nil, nil
		},
		CreateFunc: func(_ context.Context, _ hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, *hcloud.Response, error) {
			t.Fatal("create must not be called for an existing firewall")
			return hcloud.FirewallCreateResult{}, nil, nil
		},
	}

	require.NoError(t, c.EnsureSSHFirewall(context.Background()))
}

func TestEnsureP2PFirewall_OneRulePerPort(t *testing.T) {
	var gotOpts hcloud.FirewallCreateOpts
	c := testClient(testConfig())
	c.firewall = &stubFirewallAPI{
		GetByNameFunc: func(_ context.Context, _ string) (*hcloud.Firewall, *hcloud.Response, error) {
			return nil, nil, nil
		},
		CreateFunc: func(_ context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, *hcloud.Response, error) {
			gotOpts = opts
			return hcloud.FirewallCreateResult{
				Firewall: &hcloud.Firewall{ID: 2, Name: opts.Name},
			}, nil, nil
		},
	}

	ports := []topology.PortSpec{
		{Protocol: "tcp", Port: 30333},
		{Protocol: "udp", Port: 30333},
	}
	require.NoError(t, c.EnsureP2PFirewall(context.Background(), ports))
	require.Len(t, gotOpts.Rules, 2)
	assert.Equal(t, hcloud.FirewallRuleProtocolTCP, gotOpts.Rules[0].Protocol)
	assert.Equal(t, hcloud.FirewallRuleProtocolUDP, gotOpts.Rules[1].Protocol)
	for _, rule := range gotOpts.Rules {
		assert.Equal(t, "30333", *rule.Port)
		require.Len(t, rule.SourceIPs, 1)
		assert.Equal(t, "10.0.0.0/16", rule.SourceIPs[0].String())
	}
}

func TestEnsureP2PFirewall_NoPortsSkips(t *testing.T) {
	c := testClient(testConfig())
	c.firewall = &stubFirewallAPI{
		GetByNameFunc: func(_ context.Context, _ string) (*hcloud.Firewall, *hcloud.Response, error) {
			t.Fatal("lookup must not happen when no ports are derived")
			return nil, nil, nil
		},
	}

	require.NoError(t, c.EnsureP2PFirewall(context.Background(), nil))
}

func TestEnsureP2PFirewall_ExistingNotWidened(t *testing.T) {
	c := testClient(testConfig())
	c.firewall = &stubFirewallAPI{
		GetByNameFunc: func(_ context.Context, _ string) (*hcloud.Firewall, *hcloud.Response, error) {
			return &hcloud.Firewall{ID: 2, Name: FirewallP2P}, nil, nil
		},
		CreateFunc: func(_ context.Context, _ hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, *hcloud.Response, error) {
			t.Fatal("an existing firewall must not be recreated")
			return hcloud.FirewallCreateResult{}, nil, nil
		},
	}

	ports := []topology.PortSpec{{Protocol: "tcp", Port: 30333}, {Protocol: "tcp", Port: 40400}}
	require.NoError(t, c.EnsureP2PFirewall(context.Background(), ports))
}
