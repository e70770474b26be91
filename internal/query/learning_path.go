package query

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// LearningPathAPI is the backend surface used by LearningPath.
type LearningPathAPI interface {
	GenerateLearningPath(ctx context.Context, req brainapi.LearningPathRequest) (*brainapi.LearningPath, error)
	UpdateLearningPath(ctx context.Context, u brainapi.LearningPathUpdate) (*brainapi.LearningPath, error)
}

// ErrNoPath is returned by Complete before a path has been generated.
var ErrNoPath = errors.New("query: no learning path")

// LearningPathParams selects the path to generate.
type LearningPathParams struct {
	UserID        string
	TargetGoal    string
	CurrentSkills map[string]float64
	Disabled      bool
}

// LearningPath generates a learning path toward a goal. Each generation
// replaces the previous path wholesale.
type LearningPath struct {
	*fetcher[*brainapi.LearningPath]
	api LearningPathAPI

	pmu    sync.Mutex
	params LearningPathParams
}

// NewLearningPath creates the hook and generates a path for p.TargetGoal
// unless p is disabled, has no user or has no goal.
func NewLearningPath(api LearningPathAPI, p LearningPathParams, opts ...Option) *LearningPath {
	p.CurrentSkills = maps.Clone(p.CurrentSkills)
	lp := &LearningPath{
		fetcher: newFetcher[*brainapi.LearningPath]("learning-path", buildOptions(opts)),
		api:     api,
		params:  p,
	}
	lp.refresh()
	return lp
}

// Params returns the current parameters.
func (lp *LearningPath) Params() LearningPathParams {
	lp.pmu.Lock()
	defer lp.pmu.Unlock()
	p := lp.params
	p.CurrentSkills = maps.Clone(p.CurrentSkills)
	return p
}

// SetParams replaces the parameters and regenerates when they changed.
func (lp *LearningPath) SetParams(p LearningPathParams) {
	lp.pmu.Lock()
	old := lp.params
	if old.UserID == p.UserID && old.TargetGoal == p.TargetGoal &&
		old.Disabled == p.Disabled && maps.Equal(old.CurrentSkills, p.CurrentSkills) {
		lp.pmu.Unlock()
		return
	}
	p.CurrentSkills = maps.Clone(p.CurrentSkills)
	lp.params = p
	lp.pmu.Unlock()
	lp.refresh()
}

// GenerateNewPath makes goal the target and generates a fresh path for it.
// A blank goal regenerates the current target.
func (lp *LearningPath) GenerateNewPath(goal string) error {
	if goal = strings.TrimSpace(goal); goal != "" {
		lp.pmu.Lock()
		lp.params.TargetGoal = goal
		lp.pmu.Unlock()
	}
	if !lp.refresh() {
		return ErrDisabled
	}
	return nil
}

func (lp *LearningPath) refresh() bool {
	p := lp.Params()
	if p.Disabled || p.UserID == "" || p.TargetGoal == "" {
		lp.abort()
		return false
	}
	req := brainapi.LearningPathRequest{
		UserID:        p.UserID,
		TargetGoal:    p.TargetGoal,
		CurrentSkills: p.CurrentSkills,
	}
	return lp.dispatch(func(ctx context.Context) (*brainapi.LearningPath, error) {
		return lp.api.GenerateLearningPath(ctx, req)
	})
}

// Complete reports modules of the current path as finished and replaces the
// path with the backend's updated copy. ids may be milestone or module ids.
func (lp *LearningPath) Complete(ids ...string) error {
	p := lp.Params()
	if p.Disabled || p.UserID == "" {
		return ErrDisabled
	}
	cur := lp.State().Data
	if cur == nil || cur.ID == "" {
		return ErrNoPath
	}
	u := brainapi.LearningPathUpdate{PathID: cur.ID, CompletedModules: slices.Clone(ids)}
	if !lp.dispatch(func(ctx context.Context) (*brainapi.LearningPath, error) {
		return lp.api.UpdateLearningPath(ctx, u)
	}) {
		return ErrDisabled
	}
	return nil
}
