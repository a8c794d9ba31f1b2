package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstTry(t *testing.T) {
	r := New(WithMaxAttempts(3), WithInitialInterval(time.Millisecond))

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestDoRecoversWithinBudget(t *testing.T) {
	r := New(WithMaxAttempts(3), WithInitialInterval(time.Millisecond))

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	r := New(WithMaxAttempts(3), WithInitialInterval(time.Millisecond))

	last := errors.New("still broken")
	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return last
	})
	require.ErrorIs(t, err, last)
	require.Equal(t, 3, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	r := New(WithMaxAttempts(5), WithInitialInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func(ctx context.Context) error {
		return errors.New("always fails")
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDoWithData(t *testing.T) {
	r := New(WithMaxAttempts(2), WithInitialInterval(time.Millisecond))

	calls := 0
	value, err := DoWithData(r, context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestWithMaxAttemptsIgnoresInvalid(t *testing.T) {
	r := New(WithMaxAttempts(0))
	require.Equal(t, defaultMaxAttempts, r.MaxAttempts())
}
