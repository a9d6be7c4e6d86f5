package utils

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ctx     func() context.Context
		d       time.Duration
		wantErr error
	}{
		{
			name: "zero duration returns immediately",
			ctx:  context.Background,
			d:    0,
		},
		{
			name: "short duration elapses",
			ctx:  context.Background,
			d:    time.Millisecond,
		},
		{
			name: "cancelled context wins over long delay",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			d:       time.Hour,
			wantErr: context.Canceled,
		},
		{
			name: "cancelled context with zero duration",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			d:       0,
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := WaitFor(tt.ctx(), tt.d)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWaitForDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := WaitFor(ctx, time.Hour)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Minute {
		t.Fatalf("waited %v, expected to return at the deadline", elapsed)
	}
}

func TestWaitForCancelledDoesNotLeakGoroutines(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	}

	if after := runtime.NumGoroutine(); after > before {
		t.Fatalf("goroutines grew from %d to %d", before, after)
	}
}
