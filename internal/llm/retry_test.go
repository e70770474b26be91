package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetry(p Provider, attempts int) (*RetryProvider, *[]time.Duration) {
	r := WithRetry(p, RetryConfig{
		MaxAttempts: attempts,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     300 * time.Millisecond,
		Multiplier:  2,
	})
	var waits []time.Duration
	r.after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	return r, &waits
}

func unavailable() MockReply {
	return MockReply{Err: &Error{Kind: KindUnavailable, Provider: "mock", Err: errors.New("503")}}
}

var okReply = MockReply{Content: json.RawMessage(`{"response":"ok"}`)}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), okReply)
	r, waits := testRetry(mock, 3)

	resp, err := r.Generate(context.Background(), Request{Purpose: PurposeTutor})
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"ok"}`, string(resp.Content))
	assert.Len(t, mock.Calls(), 3)

	require.Len(t, *waits, 2)
	assert.InDelta(t, float64(100*time.Millisecond), float64((*waits)[0]), float64(20*time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64((*waits)[1]), float64(40*time.Millisecond))
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), unavailable(), okReply)
	r, waits := testRetry(mock, 3)

	_, err := r.Generate(context.Background(), Request{})
	assert.True(t, IsKind(err, KindUnavailable))
	assert.Len(t, mock.Calls(), 3)
	assert.Len(t, *waits, 2)
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(okReply)
	r, _ := testRetry(mock, 0)

	_, err := r.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, mock.Calls(), 1)
}

func TestRetry_NonRetryableKinds(t *testing.T) {
	for _, kind := range []Kind{KindTruncated, KindRejected} {
		t.Run(kind.String(), func(t *testing.T) {
			mock := NewMockProvider(MockReply{Err: &Error{Kind: kind, Provider: "mock"}}, okReply)
			r, _ := testRetry(mock, 3)

			_, err := r.Generate(context.Background(), Request{})
			assert.True(t, IsKind(err, kind))
			assert.Len(t, mock.Calls(), 1)
		})
	}
}

func TestRetry_InvalidOutputRetriedOnce(t *testing.T) {
	invalid := MockReply{Err: &Error{Kind: KindInvalidOutput, Provider: "mock"}}
	mock := NewMockProvider(invalid, invalid, okReply)
	r, _ := testRetry(mock, 5)

	_, err := r.Generate(context.Background(), Request{})
	assert.True(t, IsKind(err, KindInvalidOutput))
	assert.Len(t, mock.Calls(), 2)
}

func TestRetry_HonoursRetryAfter(t *testing.T) {
	limited := MockReply{Err: &Error{Kind: KindRateLimited, Provider: "mock", RetryAfter: 4 * time.Second}}
	mock := NewMockProvider(limited, okReply)
	r, waits := testRetry(mock, 3)

	_, err := r.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{4 * time.Second}, *waits)
}

func TestRetry_WaitCappedAtMax(t *testing.T) {
	r, _ := testRetry(NewMockProvider(), 10)
	for range 20 {
		assert.LessOrEqual(t, r.wait(6, errors.New("x")), 360*time.Millisecond)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	mock := NewMockProvider(unavailable(), okReply)
	r := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, mock.Calls(), 1)
}

func TestRetry_Delegates(t *testing.T) {
	r := WithRetry(NewMockProvider(), DefaultConfig().Retry)
	assert.Equal(t, "mock", r.Name())
	assert.Equal(t, "mock", r.ModelID())
}
