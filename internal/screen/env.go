package screen

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/debounce"
	"github.com/abhisek/brainkit/internal/query"
	"github.com/abhisek/brainkit/internal/store"
)

// API is the backend surface the screens use. *brainapi.Client satisfies it.
type API interface {
	query.RecommendationsAPI
	query.AnalyticsAPI
	query.SearchAPI
	query.TutorAPI
	query.LearningPathAPI
}

// Env carries what screens need to build their hooks.
type Env struct {
	Ctx         context.Context
	API         API
	UserID      string
	Logger      *zap.Logger
	Transcript  store.TranscriptRepo
	SearchDelay time.Duration
	MaxHistory  int

	// Clock overrides the hooks' clock; tests use a debounce.ManualClock.
	Clock debounce.Clock
}

// HookOptions returns the query options shared by every hook.
func (e Env) HookOptions() []query.Option {
	opts := []query.Option{query.WithLogger(e.Logger)}
	if e.Ctx != nil {
		opts = append(opts, query.WithContext(e.Ctx))
	}
	if e.Clock != nil {
		opts = append(opts, query.WithClock(e.Clock))
	}
	return opts
}
