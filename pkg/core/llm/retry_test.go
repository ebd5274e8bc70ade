package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = RetryPolicy{
	MaxAttempts:    3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     4 * time.Millisecond,
}

func TestWithRetryRecoversFromTransientFailure(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), testPolicy, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("503 service unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), testPolicy, func(context.Context) error {
		attempts++
		return errors.New("request timeout")
	})
	assert.Equal(t, 3, attempts)

	var svcErr *ExternalServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.True(t, svcErr.Transient)
	assert.Equal(t, 3, svcErr.Attempts)
}

func TestWithRetryAbortsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := errors.New("invalid api key")
	err := WithRetry(context.Background(), testPolicy, func(context.Context) error {
		attempts++
		return permanent
	})
	assert.Equal(t, 1, attempts, "permanent failures are not retried")

	var svcErr *ExternalServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.False(t, svcErr.Transient)
	assert.ErrorIs(t, err, permanent)
}

func TestWithRetryStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := WithRetry(ctx, testPolicy, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("timeout")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "cancellation must stop the backoff loop")
}

func TestIsTransientClassification(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(errors.New("429 rate limit exceeded")))
	assert.True(t, IsTransient(errors.New("model overloaded")))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.New("invalid request")))
	assert.False(t, IsTransient(nil))
}

func TestMockProviderScript(t *testing.T) {
	mock := NewMockProvider("first").
		Fail(errors.New("timeout")).
		Respond("second")

	out, err := mock.GenerateResponse(context.Background(), "p", "s", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	_, err = mock.GenerateResponse(context.Background(), "p", "s", nil)
	require.Error(t, err)

	out, err = mock.GenerateResponse(context.Background(), "p", "s", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", out)

	// Past the script the mock keeps answering so chains can finish.
	out, err = mock.GenerateResponse(context.Background(), "p", "s", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, 4, mock.Calls())
}
