package hcloud

import (
	"context"
	"fmt"
	"log"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// EnsureNetwork creates the private network for the deployment if it
// does not exist. All instances join its single cloud subnet so they
// can reach each other over internal addresses.
func (c *Client) EnsureNetwork(ctx context.Context) (*hcloud.Network, error) {
	network, _, err := c.network.GetByName(ctx, c.cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to get network %s: %w", c.cfg.Network, err)
	}
	if network != nil {
		return network, nil
	}

	_, ipRange, err := net.ParseCIDR(c.cfg.NetworkCIDR)
	if err != nil {
		return nil, fmt.Errorf("invalid network CIDR %s: %w", c.cfg.NetworkCIDR, err)
	}

	log.Printf("Creating network %s (%s)", c.cfg.Network, c.cfg.NetworkCIDR)
	network, _, err = c.network.Create(ctx, hcloud.NetworkCreateOpts{
		Name:    c.cfg.Network,
		IPRange: ipRange,
		Subnets: []hcloud.NetworkSubnet{
			{
				Type:        hcloud.NetworkSubnetTypeCloud,
				IPRange:     ipRange,
				NetworkZone: networkZoneForLocation(c.cfg.Location),
			},
		},
		Labels: map[string]string{
			LabelRole: RoleValidator,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create network %s: %w", c.cfg.Network, err)
	}
	return network, nil
}

// networkZoneForLocation maps a location to its network zone. Private
// networks are scoped to zones, not locations.
func networkZoneForLocation(location string) hcloud.NetworkZone {
	switch location {
	case "ash":
		return hcloud.NetworkZoneUSEast
	case "hil":
		return hcloud.NetworkZoneUSWest
	default:
		// hel1, fsn1, nbg1
		return hcloud.NetworkZoneEUCentral
	}
}
