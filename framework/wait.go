package framework

import (
	"context"
	"fmt"
	"time"
)

// DefaultPollInterval is used by WaitFor when no interval is given.
const DefaultPollInterval = time.Millisecond * 100

// WaitFor polls condition until it reports true, the timeout elapses, or ctx is done. An error
// from condition does not stop the polling, but the last one is included in the timeout error.
func WaitFor(ctx context.Context, timeout, interval time.Duration, condition func() (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(timeout)
	for {
		done, err := condition()
		if err == nil && done {
			return nil
		}
		if !time.Now().Before(deadline) {
			if err != nil {
				return fmt.Errorf("timed out after %s, last error: %w", timeout, err)
			}
			return fmt.Errorf("timed out after %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
