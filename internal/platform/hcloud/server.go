package hcloud

import (
	"context"
	"fmt"
	"log"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
	"github.com/eqlabs/starknet-consensus-interop/internal/util/retry"
	"github.com/eqlabs/starknet-consensus-interop/internal/util/wait"
)

// Classification labels attached to every provisioned resource. The
// firewalls select their targets by LabelRole.
const (
	LabelRole = "role"
	LabelTeam = "team"
	LabelNode = "node"

	RoleValidator = "validator"
)

// RoleSelector is the label selector matching all deployment nodes.
const RoleSelector = LabelRole + "=" + RoleValidator

// EnsureServer creates the instance for a node if it does not exist.
// An existing same-named server is reused; if it is missing the role
// label the label is patched in place rather than recreating the server.
func (c *Client) EnsureServer(ctx context.Context, node descriptor.Node, network *hcloud.Network, key *hcloud.SSHKey) (*hcloud.Server, error) {
	name := node.NodeName
	server, _, err := c.server.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get server %s: %w", name, err)
	}
	if server != nil {
		return c.repairLabels(ctx, server, node)
	}

	log.Printf("Creating instance %s", name)
	opts := hcloud.ServerCreateOpts{
		Name:       name,
		ServerType: &hcloud.ServerType{Name: c.cfg.ServerType},
		Image:      &hcloud.Image{Name: c.cfg.Image},
		Location:   &hcloud.Location{Name: c.cfg.Location},
		Networks:   []*hcloud.Network{network},
		SSHKeys:    []*hcloud.SSHKey{key},
		Labels: map[string]string{
			LabelRole: RoleValidator,
			LabelTeam: node.Team,
			LabelNode: name,
		},
		StartAfterCreate: hcloud.Ptr(true),
	}

	var result hcloud.ServerCreateResult
	err = retry.WithExponentialBackoff(ctx, func() error {
		res, _, err := c.server.Create(ctx, opts)
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server %s: %w", name, err)
	}

	actions := append([]*hcloud.Action{result.Action}, result.NextActions...)
	if err := c.waitForActions(ctx, actions...); err != nil {
		return nil, fmt.Errorf("failed to wait for server %s creation: %w", name, err)
	}
	return result.Server, nil
}

// repairLabels patches the role label onto an existing server that lost
// it, so the firewalls keep applying to it.
func (c *Client) repairLabels(ctx context.Context, server *hcloud.Server, node descriptor.Node) (*hcloud.Server, error) {
	if server.Labels[LabelRole] == RoleValidator {
		return server, nil
	}

	log.Printf("Instance %s exists but is missing the %s label, patching", server.Name, LabelRole)
	labels := make(map[string]string, len(server.Labels)+3)
	for k, v := range server.Labels {
		labels[k] = v
	}
	labels[LabelRole] = RoleValidator
	labels[LabelTeam] = node.Team
	labels[LabelNode] = node.NodeName

	updated, _, err := c.server.Update(ctx, server, hcloud.ServerUpdateOpts{Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("failed to update labels on server %s: %w", server.Name, err)
	}
	return updated, nil
}

// ExternalIP returns the public IPv4 of the named instance. Address
// assignment is asynchronous and independent of instance state, so this
// escalates in three steps: start a stopped instance, attach a public
// address if none is configured, then wait for the address to appear.
func (c *Client) ExternalIP(ctx context.Context, name string) (string, error) {
	server, err := c.getServer(ctx, name)
	if err != nil {
		return "", err
	}

	if server.Status != hcloud.ServerStatusRunning {
		log.Printf("Instance %s status is %s, starting it", name, server.Status)
		action, _, err := c.server.Poweron(ctx, server)
		if err != nil {
			return "", fmt.Errorf("failed to start server %s: %w", name, err)
		}
		if err := c.waitForActions(ctx, action); err != nil {
			return "", err
		}
		if err := c.waitForStatus(ctx, name, hcloud.ServerStatusRunning); err != nil {
			return "", err
		}
	}

	server, err = c.getServer(ctx, name)
	if err != nil {
		return "", err
	}
	if !hasPublicIPv4(server) && server.PublicNet.IPv4.ID == 0 {
		log.Printf("Attaching public address to instance %s", name)
		result, _, err := c.primaryIP.Create(ctx, hcloud.PrimaryIPCreateOpts{
			Name:         name + "-ip",
			Type:         hcloud.PrimaryIPTypeIPv4,
			AssigneeType: "server",
			AssigneeID:   hcloud.Ptr(server.ID),
		})
		if err != nil {
			return "", fmt.Errorf("failed to attach public address to %s: %w", name, err)
		}
		if err := c.waitForActions(ctx, result.Action); err != nil {
			return "", err
		}
	}

	var ip string
	err = wait.Poll(ctx, c.cfg.Timeouts.OperationPoll, c.cfg.Timeouts.AddressAssign, func(ctx context.Context) (bool, error) {
		server, err := c.getServer(ctx, name)
		if err != nil {
			return false, err
		}
		if hasPublicIPv4(server) {
			ip = server.PublicNet.IPv4.IP.String()
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return "", fmt.Errorf("no public IP assigned to %s within deadline: %w", name, err)
	}
	return ip, nil
}

// InternalIP returns the private network address of the named instance.
// An instance without a private network attachment is a provisioning
// consistency fault and is reported, not retried.
func (c *Client) InternalIP(ctx context.Context, name string) (string, error) {
	server, err := c.getServer(ctx, name)
	if err != nil {
		return "", err
	}
	if len(server.PrivateNet) == 0 {
		return "", fmt.Errorf("instance %s has no private network attachment", name)
	}
	return server.PrivateNet[0].IP.String(), nil
}

func (c *Client) getServer(ctx context.Context, name string) (*hcloud.Server, error) {
	server, _, err := c.server.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get server %s: %w", name, err)
	}
	if server == nil {
		return nil, fmt.Errorf("server not found: %s", name)
	}
	return server, nil
}

func (c *Client) waitForStatus(ctx context.Context, name string, status hcloud.ServerStatus) error {
	err := wait.Poll(ctx, c.cfg.Timeouts.OperationPoll, c.cfg.Timeouts.InstanceStart, func(ctx context.Context) (bool, error) {
		server, err := c.getServer(ctx, name)
		if err != nil {
			return false, err
		}
		return server.Status == status, nil
	})
	if err != nil {
		return fmt.Errorf("instance %s did not reach %s in time: %w", name, status, err)
	}
	return nil
}

func hasPublicIPv4(server *hcloud.Server) bool {
	ip := server.PublicNet.IPv4.IP
	return ip != nil && !ip.IsUnspecified()
}
