// Package retrier implements a bounded retry policy with exponential
// backoff. The policy is explicit configuration, not control flow: a
// call either succeeds within the attempt budget or returns the last
// error once the budget is exhausted.
package retrier

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultMaxAttempts     = 3
	defaultInitialInterval = 1 * time.Second
	defaultMaxInterval     = 30 * time.Second
	defaultMultiplier      = 2.0
	defaultJitter          = 0.1
)

// Retrier runs functions up to a fixed number of attempts with
// exponential backoff between them.
type Retrier struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
	jitter          float64
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithMaxAttempts sets the total number of attempts (first try included).
func WithMaxAttempts(n int) Option {
	return func(r *Retrier) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithInitialInterval sets the backoff interval before the second attempt.
func WithInitialInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.initialInterval = d
	}
}

// WithMaxInterval caps the backoff interval.
func WithMaxInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.maxInterval = d
	}
}

// WithMultiplier sets the backoff growth factor.
func WithMultiplier(m float64) Option {
	return func(r *Retrier) {
		r.multiplier = m
	}
}

// New creates a Retrier with default policy (3 attempts, 1s initial
// backoff, doubling, capped at 30s) and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		maxAttempts:     defaultMaxAttempts,
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
		multiplier:      defaultMultiplier,
		jitter:          defaultJitter,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// MaxAttempts returns the configured attempt budget.
func (r *Retrier) MaxAttempts() int { return r.maxAttempts }

// Do executes fn until it succeeds or the attempt budget is spent,
// returning the last error. Context cancellation aborts the backoff wait.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	interval := r.initialInterval

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			jitter := (rand.Float64()*2 - 1) * r.jitter * float64(interval)
			sleep := time.Duration(float64(interval) + jitter)
			if sleep < 0 {
				sleep = 0
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}

			interval = time.Duration(float64(interval) * r.multiplier)
			if interval > r.maxInterval {
				interval = r.maxInterval
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
	}

	return err
}

// DoWithData executes fn with retries and returns its value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
