// Package embed wraps the external embedding service. Vectors are fixed
// dimensionality per embedder; all outbound calls carry explicit timeouts,
// client-side rate limiting and a circuit breaker so an unhealthy service
// degrades retrieval instead of failing the pipeline.
package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Embedder computes a fixed-dimensionality vector for a text span.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// ErrUnavailable marks the embedding service as down (breaker open or
// provider failure). Callers treat it as a degraded condition, not fatal.
var ErrUnavailable = errors.New("embedding service unavailable")

// GuardConfig tunes the protective wrapper around a raw embedder.
type GuardConfig struct {
	Timeout          time.Duration // Per-call deadline
	RequestsPerSec   float64
	Burst            int
	BreakerFailures  uint32        // Consecutive failures before the breaker opens
	BreakerCooldown  time.Duration // Open-state duration before a probe
}

// DefaultGuardConfig returns conservative client-side limits.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Timeout:         15 * time.Second,
		RequestsPerSec:  10,
		Burst:           20,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// Guarded decorates an Embedder with a timeout, a rate limiter and a circuit
// breaker. It is the implementation the indexer and retriever are handed.
type Guarded struct {
	inner   Embedder
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]float32]
	timeout time.Duration
}

// NewGuarded wraps inner with the protective layers.
func NewGuarded(inner Embedder, cfg GuardConfig) *Guarded {
	settings := gobreaker.Settings{
		Name:    "embedder",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
	}
	return &Guarded{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker[[]float32](settings),
		timeout: cfg.Timeout,
	}
}

// EmbedText rate-limits, applies the deadline and routes the call through
// the breaker. Breaker-open and timeout conditions surface as ErrUnavailable.
func (g *Guarded) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	vec, err := g.breaker.Execute(func() ([]float32, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return g.inner.EmbedText(callCtx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timeout", ErrUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return vec, nil
}

// Dimensions reports the wrapped embedder's vector size.
func (g *Guarded) Dimensions() int {
	return g.inner.Dimensions()
}
