package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls attempt count and backoff shape.
type RetryConfig struct {
	// Attempts is the total number of tries including the first.
	// 1 disables retrying. Default: 3.
	Attempts int

	// BaseDelay seeds the backoff before the first retry. Default: 250ms.
	BaseDelay time.Duration

	// MaxDelay caps the grown delay. Default: 2s.
	MaxDelay time.Duration

	// Growth scales the delay after each failed attempt. Default: 2.0.
	Growth float64

	// Jitter spreads each delay by up to ±(Jitter × delay) so synchronized
	// clients do not retry in lockstep. Default: 0.2.
	Jitter float64

	// ShouldRetry decides retryability; nil falls back to Transient.
	ShouldRetry func(err error) bool

	// OnRetry observes each scheduled retry before its sleep.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig suits interactive geocoding lookups: three tries that
// stay inside roughly a second of added latency.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:  3,
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  2 * time.Second,
		Growth:    2.0,
		Jitter:    0.2,
	}
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	def := DefaultRetryConfig()
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.Growth <= 0 {
		cfg.Growth = def.Growth
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	return cfg
}

// Do runs fn until it succeeds, exhausts cfg.Attempts, fails a ShouldRetry
// check, or the context ends. The last attempt's error is returned.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for callables that produce a value. Failed attempts return the
// zero value, never a partial result.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = Transient
	}

	var zero T
	delay := cfg.BaseDelay
	for attempt := 1; ; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		if ctx.Err() != nil || attempt >= cfg.Attempts || !shouldRetry(err) {
			return zero, err
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		timer := time.NewTimer(jittered(delay, cfg.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.Growth)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

// jittered spreads d by up to ±(fraction × d).
func jittered(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	spread := float64(d) * fraction
	out := float64(d) + (rand.Float64()*2-1)*spread
	if out < 0 {
		return 0
	}
	return time.Duration(out)
}

// LogRetries returns an OnRetry hook that records each scheduled retry.
func LogRetries(operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying upstream call",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
