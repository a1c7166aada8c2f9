package hcloud

import (
	"context"
	"fmt"
	"log"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/eqlabs/starknet-consensus-interop/internal/util/retry"
)

// EnsureVolume creates the named data volume if it does not exist and
// returns a handle to it either way. New volumes are formatted ext4 so
// the deployment step can mount them directly.
func (c *Client) EnsureVolume(ctx context.Context, name string, sizeGB int) (*hcloud.Volume, error) {
	volume, _, err := c.volume.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get volume %s: %w", name, err)
	}
	if volume != nil {
		return volume, nil
	}

	log.Printf("Creating volume %s (%d GB)", name, sizeGB)
	result, _, err := c.volume.Create(ctx, hcloud.VolumeCreateOpts{
		Name:     name,
		Size:     sizeGB,
		Location: &hcloud.Location{Name: c.cfg.Location},
		Format:   hcloud.Ptr("ext4"),
		Labels: map[string]string{
			LabelRole: "validator-db",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create volume %s: %w", name, err)
	}

	actions := append([]*hcloud.Action{result.Action}, result.NextActions...)
	if err := c.waitForActions(ctx, actions...); err != nil {
		return nil, fmt.Errorf("failed to wait for volume %s creation: %w", name, err)
	}
	return result.Volume, nil
}

// AttachVolume attaches the volume to the server unless it is already
// attached there. A volume attached to a different server is an error;
// detaching live data disks is never done implicitly.
func (c *Client) AttachVolume(ctx context.Context, volume *hcloud.Volume, server *hcloud.Server) error {
	if volume.Server != nil {
		if volume.Server.ID == server.ID {
			return nil
		}
		return fmt.Errorf("volume %s is attached to another server (id %d)", volume.Name, volume.Server.ID)
	}

	log.Printf("Attaching volume %s to instance %s", volume.Name, server.Name)
	var action *hcloud.Action
	err := retry.WithExponentialBackoff(ctx, func() error {
		act, _, err := c.volume.Attach(ctx, volume, server)
		if err != nil {
			// Freshly created servers stay locked for a moment.
			if isResourceLocked(err) {
				return err
			}
			return retry.Fatal(err)
		}
		action = act
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to attach volume %s: %w", volume.Name, err)
	}
	if err := c.waitForActions(ctx, action); err != nil {
		return fmt.Errorf("failed to wait for volume %s attach: %w", volume.Name, err)
	}
	return nil
}

// GetVolume returns the named volume. Used by the app stage to resolve
// the stable Linux device path of a validator's data disk.
func (c *Client) GetVolume(ctx context.Context, name string) (*hcloud.Volume, error) {
	volume, _, err := c.volume.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get volume %s: %w", name, err)
	}
	if volume == nil {
		return nil, fmt.Errorf("volume not found: %s", name)
	}
	return volume, nil
}
