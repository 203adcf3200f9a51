// Package retry re-invokes fallible operations with capped exponential
// backoff. Operations must be idempotent or retry-safe by construction; the
// executor reports the last error after the attempt budget is spent instead
// of raising.
package retry

import (
	"context"
	"time"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = 500 * time.Millisecond
	defaultMaxDelay  = 7 * time.Second
)

// Config tunes the retry schedule. Zero values fall back to defaults.
type Config struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Sleep is overridable in tests. Defaults to a context-aware wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c Config) normalized() Config {
	if c.Attempts <= 0 {
		c.Attempts = defaultAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.Sleep == nil {
		c.Sleep = sleep
	}
	return c
}

// Delay returns the wait before re-running attempt (zero based):
// min(base * 2^attempt, max).
func (c Config) Delay(attempt int) time.Duration {
	d := c.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// Do invokes op up to cfg.Attempts times, waiting between attempts. The first
// successful result is returned; after the budget is spent the last error is
// returned alongside the zero value.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	cfg = cfg.normalized()

	var (
		result  T
		lastErr error
	)
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			if err := cfg.Sleep(ctx, cfg.Delay(attempt-1)); err != nil {
				return result, err
			}
		}

		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
	}
	return result, lastErr
}

// DoVoid is Do for operations without a result.
func DoVoid(ctx context.Context, cfg Config, op func(context.Context) error) error {
	_, err := Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
