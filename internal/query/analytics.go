package query

import (
	"context"
	"sync"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// AnalyticsAPI is the backend surface used by Analytics.
type AnalyticsAPI interface {
	Analytics(ctx context.Context, userID string) (*brainapi.PredictiveAnalytics, error)
}

// AnalyticsParams selects the learner whose analytics are loaded.
type AnalyticsParams struct {
	UserID   string
	Disabled bool
}

// Analytics loads the predictive analytics snapshot for a learner. Each
// load overwrites the previous snapshot.
type Analytics struct {
	*fetcher[*brainapi.PredictiveAnalytics]
	api AnalyticsAPI

	pmu    sync.Mutex
	params AnalyticsParams
}

func NewAnalytics(api AnalyticsAPI, p AnalyticsParams, opts ...Option) *Analytics {
	a := &Analytics{
		fetcher: newFetcher[*brainapi.PredictiveAnalytics]("analytics", buildOptions(opts)),
		api:     api,
		params:  p,
	}
	a.Refresh()
	return a
}

func (a *Analytics) Params() AnalyticsParams {
	a.pmu.Lock()
	defer a.pmu.Unlock()
	return a.params
}

func (a *Analytics) SetParams(p AnalyticsParams) {
	a.pmu.Lock()
	if a.params == p {
		a.pmu.Unlock()
		return
	}
	a.params = p
	a.pmu.Unlock()
	a.Refresh()
}

// Refresh reloads the snapshot. It reports whether a request was issued.
func (a *Analytics) Refresh() bool {
	p := a.Params()
	if p.Disabled || p.UserID == "" {
		a.abort()
		return false
	}
	return a.dispatch(func(ctx context.Context) (*brainapi.PredictiveAnalytics, error) {
		return a.api.Analytics(ctx, p.UserID)
	})
}
