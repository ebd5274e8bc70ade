package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RetryPolicy bounds the retry loop for transient external-service failures.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy retries up to 3 attempts with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
	}
}

// ExternalServiceError wraps a call that failed after the retry budget was
// exhausted. Transient marks whether the underlying condition was retryable.
type ExternalServiceError struct {
	Attempts  int
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("external service failed after %d attempt(s) (%s): %v", e.Attempts, kind, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// IsTransient classifies an error as retryable: timeouts, rate limits and
// service overload. Caller cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "deadline", "rate limit", "429", "503", "unavailable", "overloaded", "connection reset"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// WithRetry runs fn under the policy, backing off exponentially between
// attempts. Non-transient errors abort immediately; an exhausted budget
// surfaces as an ExternalServiceError, never a fabricated success.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}

	backoff := policy.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return &ExternalServiceError{Attempts: attempt - 1, Transient: true, Err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > policy.MaxBackoff {
				backoff = policy.MaxBackoff
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return &ExternalServiceError{Attempts: attempt, Transient: false, Err: lastErr}
		}
	}

	return &ExternalServiceError{Attempts: policy.MaxAttempts, Transient: true, Err: lastErr}
}
