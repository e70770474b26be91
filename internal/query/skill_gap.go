package query

import (
	"context"
	"strings"
	"sync"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// SkillGapAPI is the backend surface used by SkillGap.
type SkillGapAPI interface {
	SkillGapAnalysis(ctx context.Context, userID, targetRole string) (*brainapi.SkillGapAnalysis, error)
}

// SkillGapParams selects the learner and the role to compare against.
type SkillGapParams struct {
	UserID     string
	TargetRole string
	Disabled   bool
}

// SkillGap loads the gap between a learner's skills and a target role.
type SkillGap struct {
	*fetcher[*brainapi.SkillGapAnalysis]
	api SkillGapAPI

	pmu    sync.Mutex
	params SkillGapParams
}

// NewSkillGap creates the hook and loads the analysis unless p is disabled
// or lacks a user or role.
func NewSkillGap(api SkillGapAPI, p SkillGapParams, opts ...Option) *SkillGap {
	g := &SkillGap{
		fetcher: newFetcher[*brainapi.SkillGapAnalysis]("skill-gap", buildOptions(opts)),
		api:     api,
		params:  p,
	}
	g.Refresh()
	return g
}

func (g *SkillGap) Params() SkillGapParams {
	g.pmu.Lock()
	defer g.pmu.Unlock()
	return g.params
}

func (g *SkillGap) SetParams(p SkillGapParams) {
	g.pmu.Lock()
	if g.params == p {
		g.pmu.Unlock()
		return
	}
	g.params = p
	g.pmu.Unlock()
	g.Refresh()
}

// Refresh reloads the analysis. It reports whether a request was issued.
func (g *SkillGap) Refresh() bool {
	p := g.Params()
	role := strings.TrimSpace(p.TargetRole)
	if p.Disabled || p.UserID == "" || role == "" {
		g.abort()
		return false
	}
	return g.dispatch(func(ctx context.Context) (*brainapi.SkillGapAnalysis, error) {
		return g.api.SkillGapAnalysis(ctx, p.UserID, role)
	})
}
