package query

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// RecommendationsAPI is the backend surface used by Recommendations.
type RecommendationsAPI interface {
	Recommendations(ctx context.Context, q brainapi.RecommendationQuery) ([]brainapi.CourseRecommendation, error)
	SkillBasedRecommendations(ctx context.Context, req brainapi.SkillRecommendationRequest) ([]brainapi.CourseRecommendation, error)
	RecordInteraction(ctx context.Context, in brainapi.Interaction) error
}

// RecommendationParams selects the recommendations to load. With
// TargetSkills set, courses are ranked by the target skills they teach and
// Filters are not sent.
type RecommendationParams struct {
	UserID       string
	Limit        int
	Filters      map[string]string
	TargetSkills []string
	Disabled     bool
}

func (p RecommendationParams) equal(o RecommendationParams) bool {
	return p.UserID == o.UserID &&
		p.Limit == o.Limit &&
		p.Disabled == o.Disabled &&
		maps.Equal(p.Filters, o.Filters) &&
		slices.Equal(p.TargetSkills, o.TargetSkills)
}

func (p RecommendationParams) clone() RecommendationParams {
	p.Filters = maps.Clone(p.Filters)
	p.TargetSkills = slices.Clone(p.TargetSkills)
	return p
}

// Recommendations loads course recommendations for a learner.
type Recommendations struct {
	*fetcher[[]brainapi.CourseRecommendation]
	api RecommendationsAPI

	pmu    sync.Mutex
	params RecommendationParams
}

// NewRecommendations creates the hook and issues the first request unless
// p is disabled or has no user.
func NewRecommendations(api RecommendationsAPI, p RecommendationParams, opts ...Option) *Recommendations {
	r := &Recommendations{
		fetcher: newFetcher[[]brainapi.CourseRecommendation]("recommendations", buildOptions(opts)),
		api:     api,
		params:  p.clone(),
	}
	r.Refresh()
	return r
}

// Params returns the current parameters.
func (r *Recommendations) Params() RecommendationParams {
	r.pmu.Lock()
	defer r.pmu.Unlock()
	return r.params.clone()
}

// SetParams replaces the parameters and reloads when they changed.
func (r *Recommendations) SetParams(p RecommendationParams) {
	r.pmu.Lock()
	if r.params.equal(p) {
		r.pmu.Unlock()
		return
	}
	r.params = p.clone()
	r.pmu.Unlock()
	r.Refresh()
}

// Refresh reloads with the current parameters. It reports whether a request
// was issued.
func (r *Recommendations) Refresh() bool {
	p := r.Params()
	if p.Disabled || p.UserID == "" {
		r.abort()
		return false
	}
	if len(p.TargetSkills) > 0 {
		req := brainapi.SkillRecommendationRequest{UserID: p.UserID, TargetSkills: p.TargetSkills, Limit: p.Limit}
		return r.dispatch(func(ctx context.Context) ([]brainapi.CourseRecommendation, error) {
			return r.api.SkillBasedRecommendations(ctx, req)
		})
	}
	q := brainapi.RecommendationQuery{UserID: p.UserID, Limit: p.Limit, Filters: p.Filters}
	return r.dispatch(func(ctx context.Context) ([]brainapi.CourseRecommendation, error) {
		return r.api.Recommendations(ctx, q)
	})
}

// RecordInteraction reports the learner's reaction to a recommended course.
// It does not change the hook state.
func (r *Recommendations) RecordInteraction(ctx context.Context, courseID string, kind brainapi.InteractionType) error {
	p := r.Params()
	if p.Disabled || p.UserID == "" {
		return ErrDisabled
	}
	return r.api.RecordInteraction(ctx, brainapi.Interaction{
		UserID:          p.UserID,
		CourseID:        courseID,
		InteractionType: kind,
		Timestamp:       r.clock.Now().UTC(),
	})
}
