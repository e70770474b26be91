package brainapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// HTTPError indicates the backend answered with a non-2xx status.
// Its message is the normalized form shown to users.
type HTTPError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Temporary reports whether the status is worth retrying.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ErrIncompatibleServer is returned by Health when the backend API major
// version differs from the one this client speaks.
var ErrIncompatibleServer = errors.New("incompatible backend API version")

// StatusCode extracts the HTTP status from err, or 0 when err is not an
// *HTTPError.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
