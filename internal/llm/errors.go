package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies provider failures.
type Kind int

const (
	// KindUnavailable covers transport failures and 5xx responses.
	KindUnavailable Kind = iota
	// KindRateLimited is a 429 from the provider.
	KindRateLimited
	// KindInvalidOutput means the reply did not satisfy the request schema.
	KindInvalidOutput
	// KindTruncated means structured output hit the token limit.
	KindTruncated
	// KindRejected is any other 4xx: bad key, unknown model, bad request.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate limited"
	case KindInvalidOutput:
		return "invalid output"
	case KindTruncated:
		return "truncated"
	case KindRejected:
		return "rejected"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every provider.
type Error struct {
	Kind     Kind
	Provider string

	// RetryAfter is the provider's requested wait for KindRateLimited, when
	// it sent one.
	RetryAfter time.Duration

	// Content is the offending output for KindInvalidOutput and KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// statusError classifies an SDK error by the HTTP status it carried.
// status is 0 when the SDK never got a response.
func statusError(provider string, status int, err error) error {
	kind := KindUnavailable
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 400 && status < 500:
		kind = KindRejected
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}
