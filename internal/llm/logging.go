package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/store"
)

// LoggingProvider records every generation as an LLM request event.
type LoggingProvider struct {
	inner  Provider
	repo   store.EventRepo
	logger *zap.Logger
	now    func() time.Time
}

// WithLogging wraps p so each request is appended to repo. A failed append
// is logged and does not fail the generation.
func WithLogging(p Provider, repo store.EventRepo, logger *zap.Logger) *LoggingProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, repo: repo, logger: logger, now: time.Now}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)
	latency := l.now().Sub(start)

	ev := store.LLMRequestEventData{
		Provider:    l.inner.Name(),
		Model:       l.inner.ModelID(),
		Purpose:     string(req.Purpose),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if ev.Purpose == "" {
		ev.Purpose = "unknown"
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	l.logger.Debug("llm request",
		zap.String("purpose", ev.Purpose),
		zap.String("model", ev.Model),
		zap.String("learner", req.Learner),
		zap.Duration("latency", latency),
		zap.Int("input_tokens", ev.InputTokens),
		zap.Int("output_tokens", ev.OutputTokens),
		zap.Error(err),
	)
	if appendErr := l.repo.AppendLLMRequest(ctx, ev); appendErr != nil {
		l.logger.Warn("record llm request", zap.String("purpose", ev.Purpose), zap.Error(appendErr))
	}
	return resp, err
}

func (l *LoggingProvider) Name() string    { return l.inner.Name() }
func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

// transcript renders req the way `brainkit events llm` shows it.
func transcript(req Request) string {
	var b strings.Builder
	if req.Learner != "" {
		fmt.Fprintf(&b, "[learner] %s\n\n", req.Learner)
	}
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
