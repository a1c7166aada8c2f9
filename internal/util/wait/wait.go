// Package wait provides the one bounded polling helper every wait site
// uses: cloud operation completion, instance start, address assignment,
// and remote port reachability all poll through [Poll].
package wait

import (
	"context"
	"fmt"
	"time"
)

// Condition reports whether polling can stop. Returning done stops the
// poll successfully; returning an error aborts it immediately.
type Condition func(ctx context.Context) (done bool, err error)

// Poll evaluates cond every interval until it reports done, fails, the
// deadline elapses, or the context is cancelled. A zero deadline polls
// without an upper bound (context cancellation still applies).
func Poll(ctx context.Context, interval, deadline time.Duration, cond Condition) error {
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := cond(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("condition not met within deadline: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
