package brainapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_DefaultSendsOnce(t *testing.T) {
	mock := NewMockDoer(MockResponse{Status: http.StatusServiceUnavailable}, MockResponse{Body: `{}`})
	c := New("http://brain.test", WithDoer(WithRetry(mock, DefaultRetryConfig())))

	_, err := c.Analytics(context.Background(), "u1")
	assert.Equal(t, 503, StatusCode(err))
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Status: http.StatusTooManyRequests},
		MockResponse{Err: errors.New("connection reset")},
		MockResponse{Body: `{"predictedScore":0.7}`},
	)
	c := New("http://brain.test", WithDoer(WithRetry(mock, retryConfig())))

	a, err := c.Analytics(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.7, a.PredictedScore)
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetry_ReplaysBody(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Status: http.StatusBadGateway},
		MockResponse{Body: `{"response":"ok"}`},
	)
	c := New("http://brain.test", WithDoer(WithRetry(mock, retryConfig())))

	_, err := c.AskTutor(context.Background(), TutorRequest{UserID: "u1", Question: "why?"})
	require.NoError(t, err)
	require.Equal(t, 2, mock.CallCount())
	assert.Equal(t, mock.Calls[0].Body, mock.Calls[1].Body)
	assert.Contains(t, string(mock.Calls[1].Body), `"question":"why?"`)
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Status: http.StatusInternalServerError},
		MockResponse{Status: http.StatusInternalServerError},
		MockResponse{Status: http.StatusInternalServerError, Body: "final"},
	)
	c := New("http://brain.test", WithDoer(WithRetry(mock, retryConfig())))

	_, err := c.Analytics(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 500", err.Error())
	assert.Equal(t, 3, mock.CallCount())

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "final", he.Body)
}

func TestRetry_ClientErrorNotRetried(t *testing.T) {
	mock := NewMockDoer(MockResponse{Status: http.StatusNotFound})
	c := New("http://brain.test", WithDoer(WithRetry(mock, retryConfig())))

	_, err := c.Analytics(context.Background(), "u1")
	assert.Equal(t, 404, StatusCode(err))
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_ContextCanceledNotRetried(t *testing.T) {
	mock := NewMockDoer(MockResponse{Err: context.Canceled})
	c := New("http://brain.test", WithDoer(WithRetry(mock, retryConfig())))

	_, err := c.Analytics(context.Background(), "u1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Status: http.StatusServiceUnavailable, Header: http.Header{"Retry-After": []string{"60"}}},
		MockResponse{Body: `{}`},
	)
	c := New("http://brain.test", WithDoer(WithRetry(mock, retryConfig())))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Analytics(ctx, "u1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, mock.CallCount())
}

func TestBackoffBounds(t *testing.T) {
	r := &retryDoer{config: RetryConfig{MaxAttempts: 5, InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2}}

	for attempt := 0; attempt < 6; attempt++ {
		w := r.backoff(attempt, 0)
		assert.GreaterOrEqual(t, w, time.Duration(0))
		assert.LessOrEqual(t, w, 1200*time.Millisecond)
	}
	assert.Equal(t, 2*time.Second, r.backoff(0, 2*time.Second))
}
