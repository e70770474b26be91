package brainapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryConfig configures retry behavior for transient failures.
// MaxAttempts of 1 (the default) sends each request exactly once.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultRetryConfig returns a config that never retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 1,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}
}

type retryDoer struct {
	inner  Doer
	config RetryConfig
}

// WithRetry wraps a Doer so that 429, 5xx and transport errors are retried
// with exponential backoff and jitter.
func WithRetry(d Doer, cfg RetryConfig) Doer {
	if cfg.MaxAttempts <= 1 {
		return d
	}
	return &retryDoer{inner: d, config: cfg}
}

func (r *retryDoer) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		try := req
		if attempt > 0 {
			var err error
			if try, err = rewind(req); err != nil {
				return nil, err
			}
		}

		resp, err := r.inner.Do(try)
		var wait time.Duration
		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = err
			wait = r.backoff(attempt, 0)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			if attempt == r.config.MaxAttempts-1 {
				return resp, nil
			}
			wait = r.backoff(attempt, parseRetryAfter(resp.Header))
			drain(resp)
			lastErr = &HTTPError{StatusCode: resp.StatusCode}
		default:
			return resp, nil
		}

		// Last attempt, don't sleep.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// backoff computes the wait duration for the given attempt.
func (r *retryDoer) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// rewind clones req with a fresh body so it can be sent again.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("retry %s %s: request body cannot be replayed", req.Method, req.URL.Path)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind body: %w", err)
	}
	clone.Body = body
	return clone, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
