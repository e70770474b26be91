package brainapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/store"
)

type recordingDoer struct {
	inner  Doer
	repo   store.EventRepo
	logger *zap.Logger
}

// WithRecorder wraps a Doer so every request is appended to repo as a
// request event. Recording failures are logged and never fail the request.
func WithRecorder(d Doer, repo store.EventRepo, logger *zap.Logger) Doer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &recordingDoer{inner: d, repo: repo, logger: logger}
}

func (r *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := r.inner.Do(req)

	data := store.RequestEventData{
		Method:    req.Method,
		Endpoint:  Endpoint(req),
		LatencyMs: time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil:
		data.ErrorMessage = err.Error()
	default:
		data.StatusCode = resp.StatusCode
		data.Success = resp.StatusCode >= 200 && resp.StatusCode <= 299
		if !data.Success {
			data.ErrorMessage = (&HTTPError{StatusCode: resp.StatusCode}).Error()
		}
	}

	if logErr := r.repo.AppendRequest(req.Context(), data); logErr != nil {
		r.logger.Warn("failed to record request event",
			zap.String("endpoint", data.Endpoint),
			zap.Error(logErr),
		)
	}
	return resp, err
}

// Endpoint returns the request path relative to the Brain AI API prefix,
// e.g. "/recommendations". Path ids are replaced by ":id". Paths outside the
// prefix are returned as is.
func Endpoint(req *http.Request) string {
	p := req.URL.Path
	rest, ok := strings.CutPrefix(p, apiPrefix)
	if !ok || rest == "" {
		return p
	}
	if id, ok := strings.CutPrefix(rest, "/learning-path/"); ok {
		if _, tail, found := strings.Cut(id, "/"); found {
			return "/learning-path/:id/" + tail
		}
	}
	return rest
}
