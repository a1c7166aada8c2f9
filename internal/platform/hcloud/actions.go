package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/eqlabs/starknet-consensus-interop/internal/util/wait"
)

// waitForActions blocks until every action reaches a terminal state,
// polling at the configured interval. A terminal error state aborts with
// the action's error; there is no partial success.
func (c *Client) waitForActions(ctx context.Context, actions ...*hcloud.Action) error {
	for _, action := range actions {
		if action == nil {
			continue
		}
		if err := c.waitForAction(ctx, action); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) waitForAction(ctx context.Context, action *hcloud.Action) error {
	return wait.Poll(ctx, c.cfg.Timeouts.OperationPoll, 0, func(ctx context.Context) (bool, error) {
		act, _, err := c.action.GetByID(ctx, action.ID)
		if err != nil {
			return false, fmt.Errorf("failed to poll operation %d: %w", action.ID, err)
		}
		switch act.Status {
		case hcloud.ActionStatusSuccess:
			return true, nil
		case hcloud.ActionStatusError:
			return false, fmt.Errorf("operation %d (%s) failed: %w", act.ID, act.Command, act.Error())
		default:
			return false, nil
		}
	})
}
