package engine

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// maxTrackedPaths bounds how many generated paths are kept for progress
// updates. The oldest path is forgotten first.
const maxTrackedPaths = 1000

// trackedPath is a generated path with the per-milestone facts needed to
// recompute statuses. The slices are indexed like path.Milestones.
type trackedPath struct {
	userID    string
	path      brainapi.LearningPath
	modules   []string
	skills    []string
	minutes   []int
	done      []bool
	updatedAt time.Time
}

// restatus marks done milestones completed, the first open one in progress
// and the rest pending, and re-estimates the remaining duration.
func (e *Engine) restatus(tp *trackedPath) {
	var remaining int
	active := false
	for i := range tp.path.Milestones {
		m := &tp.path.Milestones[i]
		switch {
		case tp.done[i]:
			m.Status = brainapi.MilestoneCompleted
		case !active:
			m.Status = brainapi.MilestoneInProgress
			active = true
		default:
			m.Status = brainapi.MilestonePending
		}
		if !tp.done[i] {
			remaining += tp.minutes[i]
		}
	}
	tp.path.EstimatedDuration = e.formatWeeks(remaining)
	tp.updatedAt = e.now()
}

func (e *Engine) track(tp *trackedPath) {
	e.pathMu.Lock()
	defer e.pathMu.Unlock()
	e.paths[tp.path.ID] = tp
	e.pathOrder = append(e.pathOrder, tp.path.ID)
	for len(e.pathOrder) > maxTrackedPaths {
		delete(e.paths, e.pathOrder[0])
		e.pathOrder = e.pathOrder[1:]
	}
}

func clonePath(p *brainapi.LearningPath) *brainapi.LearningPath {
	out := *p
	out.CurrentSkills = maps.Clone(p.CurrentSkills)
	out.Milestones = slices.Clone(p.Milestones)
	out.SkillGaps = slices.Clone(p.SkillGaps)
	out.RecommendedResources = slices.Clone(p.RecommendedResources)
	return &out
}

// UpdateLearningPath applies reported progress to a tracked path. Completed
// modules may be named by milestone id or catalog module id. Progress data
// raises skill levels for the path's learner; a milestone whose skill
// reaches the strength threshold is completed. Completion is never undone.
func (e *Engine) UpdateLearningPath(ctx context.Context, u brainapi.LearningPathUpdate) (*brainapi.LearningPath, error) {
	if strings.TrimSpace(u.PathID) == "" {
		return nil, invalid("path_id is required")
	}
	for skill, level := range u.ProgressData {
		if level < 0 || level > 1 {
			return nil, invalid("progress_data[%s] must be within [0, 1]", skill)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.pathMu.Lock()
	tp, ok := e.paths[u.PathID]
	if !ok {
		e.pathMu.Unlock()
		return nil, fmt.Errorf("learning path %q: %w", u.PathID, ErrNotFound)
	}

	var marks []int
	for _, id := range u.CompletedModules {
		i := slices.IndexFunc(tp.path.Milestones, func(m brainapi.Milestone) bool { return m.ID == id })
		if i < 0 {
			i = slices.Index(tp.modules, id)
		}
		if i < 0 {
			e.pathMu.Unlock()
			return nil, invalid("unknown module %q in path %s", id, u.PathID)
		}
		marks = append(marks, i)
	}
	for _, i := range marks {
		tp.done[i] = true
	}
	for skill, level := range u.ProgressData {
		if tp.path.CurrentSkills == nil {
			tp.path.CurrentSkills = make(map[string]float64)
		}
		tp.path.CurrentSkills[skill] = round2(level)
		if level < StrengthThreshold {
			continue
		}
		for i, s := range tp.skills {
			if s == skill {
				tp.done[i] = true
			}
		}
	}
	e.restatus(tp)
	out := clonePath(&tp.path)
	userID := tp.userID
	e.pathMu.Unlock()

	if len(u.ProgressData) > 0 {
		e.withLearner(userID, func(l *learner) {
			for skill, level := range u.ProgressData {
				l.skills[skill] = round2(level)
			}
		})
	}
	return out, nil
}

// LearningPathStatus summarizes progress on a tracked path.
func (e *Engine) LearningPathStatus(ctx context.Context, pathID string) (*brainapi.LearningPathStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.pathMu.Lock()
	defer e.pathMu.Unlock()
	tp, ok := e.paths[pathID]
	if !ok {
		return nil, fmt.Errorf("learning path %q: %w", pathID, ErrNotFound)
	}

	st := &brainapi.LearningPathStatus{
		PathID:             tp.path.ID,
		TargetGoal:         tp.path.TargetGoal,
		TotalMilestones:    len(tp.path.Milestones),
		EstimatedRemaining: tp.path.EstimatedDuration,
		UpdatedAt:          tp.updatedAt,
	}
	for _, m := range tp.path.Milestones {
		switch m.Status {
		case brainapi.MilestoneCompleted:
			st.CompletedCount++
		case brainapi.MilestoneInProgress:
			st.CurrentMilestone = m.Title
		}
	}
	if st.TotalMilestones > 0 {
		st.Progress = round2(float64(st.CompletedCount) / float64(st.TotalMilestones))
	}
	return st, nil
}

// PathOwner returns the learner a tracked path was generated for.
func (e *Engine) PathOwner(pathID string) (string, bool) {
	e.pathMu.Lock()
	defer e.pathMu.Unlock()
	tp, ok := e.paths[pathID]
	if !ok {
		return "", false
	}
	return tp.userID, true
}
