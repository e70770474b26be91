package query

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// AssessmentAPI is the backend surface used by SkillAssessment.
type AssessmentAPI interface {
	AssessSkills(ctx context.Context, req brainapi.AssessmentRequest) (*brainapi.SkillAssessment, error)
}

// AssessmentParams holds the learner and the graded results to assess.
type AssessmentParams struct {
	UserID   string
	Results  []brainapi.AssessmentResult
	Disabled bool
}

// SkillAssessment submits graded results and holds the resulting assessment.
// Nothing is sent until there are results to assess.
type SkillAssessment struct {
	*fetcher[*brainapi.SkillAssessment]
	api AssessmentAPI

	pmu    sync.Mutex
	params AssessmentParams
}

func NewSkillAssessment(api AssessmentAPI, p AssessmentParams, opts ...Option) *SkillAssessment {
	p.Results = slices.Clone(p.Results)
	s := &SkillAssessment{
		fetcher: newFetcher[*brainapi.SkillAssessment]("skill-assessment", buildOptions(opts)),
		api:     api,
		params:  p,
	}
	s.refresh()
	return s
}

func (s *SkillAssessment) Params() AssessmentParams {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	p := s.params
	p.Results = slices.Clone(p.Results)
	return p
}

func (s *SkillAssessment) SetParams(p AssessmentParams) {
	s.pmu.Lock()
	old := s.params
	if old.UserID == p.UserID && old.Disabled == p.Disabled && slices.Equal(old.Results, p.Results) {
		s.pmu.Unlock()
		return
	}
	p.Results = slices.Clone(p.Results)
	s.params = p
	s.pmu.Unlock()
	s.refresh()
}

// ErrNoResults is returned by Assess when there is nothing to assess.
var ErrNoResults = errors.New("query: no assessment results")

// Assess replaces the results and submits them.
func (s *SkillAssessment) Assess(results []brainapi.AssessmentResult) error {
	if len(results) == 0 {
		return ErrNoResults
	}
	s.pmu.Lock()
	s.params.Results = slices.Clone(results)
	s.pmu.Unlock()
	if !s.refresh() {
		return ErrDisabled
	}
	return nil
}

func (s *SkillAssessment) refresh() bool {
	p := s.Params()
	if p.Disabled || p.UserID == "" || len(p.Results) == 0 {
		s.abort()
		return false
	}
	req := brainapi.AssessmentRequest{UserID: p.UserID, AssessmentResults: p.Results}
	return s.dispatch(func(ctx context.Context) (*brainapi.SkillAssessment, error) {
		return s.api.AssessSkills(ctx, req)
	})
}
