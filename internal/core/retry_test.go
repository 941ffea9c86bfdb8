// AngelaMos | 2026
// retry_test.go

package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("retry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	refused := errors.New("connection refused")
	calls := 0

	err := retry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		return refused
	})

	if !errors.Is(err, refused) {
		t.Fatalf("retry() error = %v, want wrapped cause", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry(ctx, 5, time.Hour, func(context.Context) error {
		return errors.New("down")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("retry() error = %v, want context.Canceled", err)
	}
}

func TestJitteredDurationBounds(t *testing.T) {
	base := 700 * time.Millisecond
	for range 100 {
		got := jitteredDuration(base)
		if got < base || got >= base+base/7 {
			t.Fatalf("jitteredDuration(%v) = %v out of range", base, got)
		}
	}
}
