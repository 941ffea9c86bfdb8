// AngelaMos | 2026
// retry.go

package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// retry calls fn until it succeeds or attempts run out. The wait doubles
// after every failure and carries up to a seventh of random jitter.
func retry(
	ctx context.Context,
	attempts int,
	base time.Duration,
	fn func(context.Context) error,
) error {
	var err error
	wait := base

	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %w)", ctx.Err(), err)
		case <-time.After(jitteredDuration(wait)):
		}
		wait *= 2
	}

	return fmt.Errorf("after %d attempts: %w", attempts, err)
}

func jitteredDuration(base time.Duration) time.Duration {
	if base < 7 {
		return base
	}
	//nolint:gosec // G404: non-security-sensitive jitter
	jitter := time.Duration(rand.Int64N(int64(base / 7)))
	return base + jitter
}
