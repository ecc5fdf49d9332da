package agent

import (
	"context"
	"time"
)

// Sleep waits for d or until ctx is done. It is the suspension point agents
// use in place of real I/O latency.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
