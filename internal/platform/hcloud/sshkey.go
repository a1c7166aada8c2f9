package hcloud

import (
	"context"
	"fmt"
	"log"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// EnsureSSHKey uploads the deployment public key if it is not already
// registered. Keys are matched by name; a same-named key is reused as is.
func (c *Client) EnsureSSHKey(ctx context.Context, name, publicKey string) (*hcloud.SSHKey, error) {
	key, _, err := c.sshKey.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get SSH key %s: %w", name, err)
	}
	if key != nil {
		return key, nil
	}

	log.Printf("Registering SSH key %s", name)
	key, _, err = c.sshKey.Create(ctx, hcloud.SSHKeyCreateOpts{
		Name:      name,
		PublicKey: publicKey,
		Labels: map[string]string{
			LabelRole: RoleValidator,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH key %s: %w", name, err)
	}
	return key, nil
}
