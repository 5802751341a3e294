package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_SucceedsAfterTransientError(t *testing.T) {
	// Given: a function that fails twice then succeeds
	attempts := 0
	fn := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient error")
		}
		return nil
	}

	// When: retrying with default config
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = 10 * time.Millisecond // Speed up test

	err := Retry(context.Background(), cfg, fn)

	// Then: succeeds after 3 attempts
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_FailsAfterMaxRetries(t *testing.T) {
	// Given: a function that always fails
	attempts := 0
	fn := func() error {
		attempts++
		return errors.New("persistent error")
	}

	cfg := RetryConfig{
		MaxRetries:   2,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}

	err := Retry(context.Background(), cfg, fn)

	// Then: fails wrapping the last error, after initial + 2 retries
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 retries")
	assert.Contains(t, err.Error(), "persistent error")
	assert.Equal(t, 3, attempts)
}

func TestRetry_ContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	fn := func() error {
		attempts++
		cancel() // cancel during the first attempt
		return errors.New("error")
	}

	cfg := RetryConfig{
		MaxRetries:   5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	err := Retry(ctx, cfg, fn)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, attempts)
}

func TestRetryWithResult_ReturnsValue(t *testing.T) {
	attempts := 0
	fn := func() ([]float32, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("transient")
		}
		return []float32{0.1, 0.2}, nil
	}

	cfg := DefaultRetryConfig()
	cfg.InitialDelay = 5 * time.Millisecond

	result, err := RetryWithResult(context.Background(), cfg, fn)

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, result)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithResult_ZeroValueOnExhaustion(t *testing.T) {
	fn := func() (string, error) {
		return "partial", errors.New("always fails")
	}

	cfg := RetryConfig{
		MaxRetries:   1,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}

	result, err := RetryWithResult(context.Background(), cfg, fn)

	require.Error(t, err)
	assert.Equal(t, "", result)
}

func TestRetry_BackoffGrowsAndCaps(t *testing.T) {
	// Timing-sensitive but with generous margins: delays should be
	// roughly 10ms then 20ms (multiplier 2, cap 20ms keeps the third at 20ms).
	var timestamps []time.Time
	fn := func() error {
		timestamps = append(timestamps, time.Now())
		return errors.New("error")
	}

	cfg := RetryConfig{
		MaxRetries:   3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	}

	_ = Retry(context.Background(), cfg, fn)

	require.Len(t, timestamps, 4)
	gap1 := timestamps[1].Sub(timestamps[0])
	gap2 := timestamps[2].Sub(timestamps[1])
	gap3 := timestamps[3].Sub(timestamps[2])

	assert.GreaterOrEqual(t, gap1, 9*time.Millisecond)
	assert.GreaterOrEqual(t, gap2, 19*time.Millisecond)
	// Capped at MaxDelay, so the third gap stays near 20ms
	assert.Less(t, gap3, 100*time.Millisecond)
}

func TestRetry_JitterStaysWithinBounds(t *testing.T) {
	var timestamps []time.Time
	fn := func() error {
		timestamps = append(timestamps, time.Now())
		return errors.New("error")
	}

	cfg := RetryConfig{
		MaxRetries:   1,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       true,
	}

	_ = Retry(context.Background(), cfg, fn)

	require.Len(t, timestamps, 2)
	gap := timestamps[1].Sub(timestamps[0])
	// Jitter factor is in [0.5, 1.0)
	assert.GreaterOrEqual(t, gap, 9*time.Millisecond)
	assert.Less(t, gap, 60*time.Millisecond)
}
