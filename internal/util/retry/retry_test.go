package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithInitialDelay(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return errors.New("always failing")
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnFatal(t *testing.T) {
	t.Parallel()

	calls := 0
	cause := errors.New("bad request")
	err := Do(context.Background(), func() error {
		calls++
		return Fatal(cause)
	}, WithInitialDelay(time.Millisecond))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}

func TestDoRespectsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error {
		return errors.New("transient")
	}, WithInitialDelay(time.Hour))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFixedInterval(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	WithFixedInterval(5 * time.Second)(cfg)
	assert.Equal(t, 5*time.Second, cfg.InitialDelay)
	assert.Equal(t, 5*time.Second, cfg.MaxDelay)
	assert.Equal(t, 1.0, cfg.Multiplier)
}

func TestFatalHelpers(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Fatal(nil))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.True(t, IsFatal(Fatal(errors.New("wrapped"))))
}
