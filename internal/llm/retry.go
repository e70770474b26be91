package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries rate limits, outages and, once, invalid output.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig

	// after is time.After; tests replace it.
	after func(time.Duration) <-chan time.Time
}

// WithRetry wraps p with cfg. MaxAttempts below 1 means a single attempt.
func WithRetry(p Provider, cfg RetryConfig) *RetryProvider {
	return &RetryProvider{inner: p, cfg: cfg, after: time.After}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	invalidSeen := false

	var err error
	for attempt := range attempts {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !retryable(err, &invalidSeen) || attempt == attempts-1 {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-r.after(r.wait(attempt, err)):
		}
	}
	return nil, err
}

func (r *RetryProvider) Name() string    { return r.inner.Name() }
func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func retryable(err error, invalidSeen *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return true
	}
	switch e.Kind {
	case KindRateLimited, KindUnavailable:
		return true
	case KindInvalidOutput:
		retry := !*invalidSeen
		*invalidSeen = true
		return retry
	default:
		return false
	}
}

// wait honours a provider Retry-After, otherwise backs off exponentially
// with up to 20% jitter either way.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	d := float64(r.cfg.InitialWait)
	for range attempt {
		d *= r.cfg.Multiplier
	}
	if limit := float64(r.cfg.MaxWait); limit > 0 && d > limit {
		d = limit
	}
	d += d * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(d, 0))
}
