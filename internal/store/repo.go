package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit    int       // max results (0 = unlimited)
	After    int64     // sequence > After
	Before   int64     // sequence < Before
	From     time.Time // timestamp >= From
	To       time.Time // timestamp <= To
	Endpoint string    // exact endpoint match
}

// RequestEventData captures a single backend API call.
type RequestEventData struct {
	Method       string
	Endpoint     string
	StatusCode   int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestEvent is a stored RequestEventData.
type RequestEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	RequestEventData
}

// EndpointUsage aggregates request events for one endpoint.
type EndpointUsage struct {
	Endpoint     string
	Requests     int
	Failures     int
	AvgLatencyMs float64
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Requests     int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to recorded events.
type EventRepo interface {
	// AppendRequest records a backend API call.
	AppendRequest(ctx context.Context, data RequestEventData) error

	// QueryRequests lists API calls, newest first.
	QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error)

	// GetRequest returns a single API call by ID, or nil if it doesn't exist.
	GetRequest(ctx context.Context, id int64) (*RequestEvent, error)

	// UsageByEndpoint summarizes API calls grouped by endpoint.
	UsageByEndpoint(ctx context.Context) ([]EndpointUsage, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMRequests lists LLM calls, newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// LLMUsageByModel summarizes token usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// TranscriptMessage is one persisted tutor conversation entry.
type TranscriptMessage struct {
	Sequence  int64
	UserID    string
	MessageID string
	Role      string
	Content   string
	Timestamp time.Time
}

// TranscriptRepo persists tutor conversations across sessions.
type TranscriptRepo interface {
	// Append stores a message at the end of the user's transcript.
	Append(ctx context.Context, msg TranscriptMessage) error

	// Recent returns up to limit of the user's latest messages in
	// chronological order. A limit of 0 returns the whole transcript.
	Recent(ctx context.Context, userID string, limit int) ([]TranscriptMessage, error)

	// Clear removes the user's transcript.
	Clear(ctx context.Context, userID string) error
}
