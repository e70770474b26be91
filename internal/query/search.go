package query

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/debounce"
)

// DefaultSearchDelay is the quiet period before a query is sent.
const DefaultSearchDelay = 300 * time.Millisecond

// SearchAPI is the backend surface used by Search.
type SearchAPI interface {
	Search(ctx context.Context, req brainapi.SearchRequest) ([]brainapi.SearchResult, error)
	SearchSuggestions(ctx context.Context, query string, limit int) ([]string, error)
}

// SearchParams configures a Search hook.
type SearchParams struct {
	UserContext map[string]string
	Delay       time.Duration // 0 means DefaultSearchDelay
	Disabled    bool
}

// Search runs debounced smart searches. Only the last query typed within the
// delay is sent; clearing the query clears results immediately.
type Search struct {
	*fetcher[[]brainapi.SearchResult]
	api       SearchAPI
	debouncer *debounce.Debouncer

	pmu    sync.Mutex
	query  string
	params SearchParams
}

func NewSearch(api SearchAPI, p SearchParams, opts ...Option) *Search {
	o := buildOptions(opts)
	if p.Delay <= 0 {
		p.Delay = DefaultSearchDelay
	}
	p.UserContext = maps.Clone(p.UserContext)
	return &Search{
		fetcher:   newFetcher[[]brainapi.SearchResult]("search", o),
		api:       api,
		debouncer: debounce.New(p.Delay, o.clock),
		params:    p,
	}
}

// Query returns the current query text.
func (s *Search) Query() string {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	return s.query
}

// SetQuery updates the query. A blank query cancels any pending search and
// empties the results without a request; otherwise a search is scheduled
// after the debounce delay.
func (s *Search) SetQuery(q string) {
	s.pmu.Lock()
	s.query = q
	disabled := s.params.Disabled
	s.pmu.Unlock()

	q = strings.TrimSpace(q)
	switch {
	case q == "":
		s.debouncer.Cancel()
		s.reset()
	case disabled:
		s.debouncer.Cancel()
		s.abort()
	default:
		s.debouncer.Trigger(func() { s.run(q) })
	}
}

// SetParams replaces the user context and enabled flag. The delay is fixed at
// construction. A pending or current query is searched again.
func (s *Search) SetParams(p SearchParams) {
	s.pmu.Lock()
	if s.params.Disabled == p.Disabled && maps.Equal(s.params.UserContext, p.UserContext) {
		s.pmu.Unlock()
		return
	}
	s.params.UserContext = maps.Clone(p.UserContext)
	s.params.Disabled = p.Disabled
	q := s.query
	s.pmu.Unlock()
	s.SetQuery(q)
}

// Suggestions returns completions for a partial query. It does not change
// the hook state.
func (s *Search) Suggestions(ctx context.Context, prefix string, limit int) ([]string, error) {
	s.pmu.Lock()
	disabled := s.params.Disabled
	s.pmu.Unlock()
	if disabled {
		return nil, ErrDisabled
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	return s.api.SearchSuggestions(ctx, prefix, limit)
}

func (s *Search) run(q string) {
	s.pmu.Lock()
	req := brainapi.SearchRequest{Query: q, UserContext: maps.Clone(s.params.UserContext)}
	s.pmu.Unlock()
	s.dispatch(func(ctx context.Context) ([]brainapi.SearchResult, error) {
		return s.api.Search(ctx, req)
	})
}

// Close cancels the pending and in-flight search.
func (s *Search) Close() {
	s.debouncer.Cancel()
	s.fetcher.Close()
}
