package hcloud

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/eqlabs/starknet-consensus-interop/internal/topology"
)

// Firewall names. Both firewalls apply to instances by label selector,
// so instances created later are covered automatically.
const (
	FirewallSSH = "allow-ssh"
	FirewallP2P = "allow-validator-p2p"
)

// EnsureSSHFirewall creates the firewall admitting SSH from anywhere.
// An existing firewall with the same name is left untouched.
func (c *Client) EnsureSSHFirewall(ctx context.Context) error {
	firewall, _, err := c.firewall.GetByName(ctx, FirewallSSH)
	if err != nil {
		return fmt.Errorf("failed to get firewall %s: %w", FirewallSSH, err)
	}
	if firewall != nil {
		return nil
	}

	log.Printf("Creating firewall %s", FirewallSSH)
	rules := []hcloud.FirewallRule{
		{
			Direction: hcloud.FirewallRuleDirectionIn,
			Protocol:  hcloud.FirewallRuleProtocolTCP,
			Port:      hcloud.Ptr("22"),
			SourceIPs: anywhere(),
		},
	}
	return c.createFirewall(ctx, FirewallSSH, rules)
}

// EnsureP2PFirewall creates the firewall admitting the derived consensus
// ports between instances on the private network. With no ports derived
// there is nothing to open and the firewall is skipped. An existing
// firewall is never widened; changing the port set means deleting the
// firewall and re-running the infra stage.
func (c *Client) EnsureP2PFirewall(ctx context.Context, ports []topology.PortSpec) error {
	if len(ports) == 0 {
		log.Printf("No consensus ports derived, skipping firewall %s", FirewallP2P)
		return nil
	}

	firewall, _, err := c.firewall.GetByName(ctx, FirewallP2P)
	if err != nil {
		return fmt.Errorf("failed to get firewall %s: %w", FirewallP2P, err)
	}
	if firewall != nil {
		return nil
	}

	_, internal, err := net.ParseCIDR(c.cfg.NetworkCIDR)
	if err != nil {
		return fmt.Errorf("invalid network CIDR %s: %w", c.cfg.NetworkCIDR, err)
	}

	log.Printf("Creating firewall %s for %d port(s)", FirewallP2P, len(ports))
	rules := make([]hcloud.FirewallRule, 0, len(ports))
	for _, spec := range ports {
		protocol := hcloud.FirewallRuleProtocolTCP
		if spec.Protocol == "udp" {
			protocol = hcloud.FirewallRuleProtocolUDP
		}
		rules = append(rules, hcloud.FirewallRule{
			Direction: hcloud.FirewallRuleDirectionIn,
			Protocol:  protocol,
			Port:      hcloud.Ptr(strconv.Itoa(spec.Port)),
			SourceIPs: []net.IPNet{*internal},
		})
	}
	return c.createFirewall(ctx, FirewallP2P, rules)
}

func (c *Client) createFirewall(ctx context.Context, name string, rules []hcloud.FirewallRule) error {
	result, _, err := c.firewall.Create(ctx, hcloud.FirewallCreateOpts{
		Name:  name,
		Rules: rules,
		Labels: map[string]string{
			LabelRole: RoleValidator,
		},
		ApplyTo: []hcloud.FirewallResource{
			{
				Type: hcloud.FirewallResourceTypeLabelSelector,
				LabelSelector: &hcloud.FirewallResourceLabelSelector{
					Selector: RoleSelector,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create firewall %s: %w", name, err)
	}
	if err := c.waitForActions(ctx, result.Actions...); err != nil {
		return fmt.Errorf("failed to wait for firewall %s creation: %w", name, err)
	}
	return nil
}

func anywhere() []net.IPNet {
	_, v4, _ := net.ParseCIDR("0.0.0.0/0")
	_, v6, _ := net.ParseCIDR("::/0")
	return []net.IPNet{*v4, *v6}
}
