package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestRetryWithBackoffSucceedsAfterRetryableFailures(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return NewRateLimitError("anthropic", "slow down")
		}
		return nil
	}, fastRetryConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return NewAuthenticationError("anthropic", "bad key")
	}, fastRetryConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls, "authentication errors must not be retried")
}

func TestRetryWithBackoffExhaustsRetries(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return NewServiceUnavailableError("anthropic", "overloaded")
	}, fastRetryConfig(2))

	require.Error(t, err)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")

	var httpErr *Error
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, ErrTypeServiceUnavailable, httpErr.Type)
}

func TestRetryWithBackoffHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		calls++
		return nil
	}, fastRetryConfig(5))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryWithBackoffGenericErrorsFailFast(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("plain error")
	}, fastRetryConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExponentialBackoffBounds(t *testing.T) {
	config := RetryConfig{
		MaxRetries:     5,
		InitialBackoff: time.Second,
		MaxBackoff:     8 * time.Second,
		Multiplier:     2.0,
	}

	for attempt := 0; attempt < 10; attempt++ {
		backoff := ExponentialBackoff(attempt, config)
		assert.GreaterOrEqual(t, backoff, time.Duration(0))
		assert.LessOrEqual(t, backoff, config.MaxBackoff)
	}
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(errors.New("generic")))
	assert.True(t, ShouldRetry(NewRateLimitError("p", "m")))
	assert.True(t, ShouldRetry(NewTimeoutError("p", "m")))
	assert.False(t, ShouldRetry(NewInvalidRequestError("p", "m")))
}
