package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/llm"
)

// minutesPerLesson sizes module durations.
const minutesPerLesson = 45

// step is one planned module before statuses are assigned.
type step struct {
	course      *Course
	module      *Module
	title       string
	description string
}

type pathOutput struct {
	Milestones []struct {
		ModuleID    string `json:"module_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"milestones"`
	SkillGaps []string `json:"skill_gaps"`
}

// LearningPath plans an ordered path of catalog modules toward the target
// goal. Skills in the request override what the engine has learned about the
// user. Modules whose skill is already at the strength threshold are marked
// completed, the first remaining module is in progress and the rest pending.
func (e *Engine) LearningPath(ctx context.Context, req brainapi.LearningPathRequest) (*brainapi.LearningPath, error) {
	if req.UserID == "" {
		return nil, invalid("user_id is required")
	}
	goal := strings.TrimSpace(req.TargetGoal)
	if goal == "" {
		return nil, invalid("target_goal is required")
	}
	for skill, level := range req.CurrentSkills {
		if level < 0 || level > 1 {
			return nil, invalid("current_skills[%s] must be within [0, 1]", skill)
		}
	}

	skills := e.SkillLevels(req.UserID)
	maps.Copy(skills, req.CurrentSkills)

	var (
		steps    []step
		gaps     []string
		modelled bool
	)
	if e.provider != nil {
		var err error
		steps, gaps, err = e.generatePath(ctx, req.UserID, goal, skills)
		switch {
		case err == nil:
			modelled = true
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			e.logger.Warn("learning path generation failed, using catalog plan", zap.Error(err))
		}
	}
	if !modelled {
		steps, gaps = e.planPath(goal), nil
	}

	tp := &trackedPath{
		userID: req.UserID,
		path: brainapi.LearningPath{
			ID:            uuid.NewString(),
			TargetGoal:    goal,
			CurrentSkills: skills,
			Milestones:    make([]brainapi.Milestone, 0, len(steps)),
		},
	}
	path := &tp.path

	courses := make(map[string]bool)
	for i, s := range steps {
		done := skills[s.module.Skill] >= StrengthThreshold
		minutes := s.module.Lessons * minutesPerLesson
		if !done && !modelled {
			gaps = appendUnique(gaps, humanize(s.module.Skill))
		}
		tp.modules = append(tp.modules, s.module.ID)
		tp.skills = append(tp.skills, s.module.Skill)
		tp.minutes = append(tp.minutes, minutes)
		tp.done = append(tp.done, done)
		path.Milestones = append(path.Milestones, brainapi.Milestone{
			ID:                fmt.Sprintf("m%d-%s", i+1, s.module.ID),
			Title:             s.title,
			Description:       s.description,
			EstimatedDuration: formatHours(minutes),
			CourseID:          s.course.ID,
		})
		if !courses[s.course.ID] {
			courses[s.course.ID] = true
			path.RecommendedResources = append(path.RecommendedResources, brainapi.Resource{
				Title: s.course.Title,
				Type:  "course",
				URL:   "/courses/" + s.course.Slug,
			})
		}
	}
	for _, d := range e.catalog.Discussions {
		if courses[d.CourseID] {
			path.RecommendedResources = append(path.RecommendedResources, brainapi.Resource{
				Title: d.Title,
				Type:  "discussion",
				URL:   "/discussions/" + d.ID,
			})
		}
	}

	path.SkillGaps = gaps
	if path.SkillGaps == nil {
		path.SkillGaps = []string{}
	}
	e.restatus(tp)
	e.track(tp)
	return clonePath(path), nil
}

// planPath picks the courses whose text overlaps the goal (every course when
// nothing matches), adds their prerequisites and walks their modules in
// order.
func (e *Engine) planPath(goal string) []step {
	query := tokenize(goal)
	var ids []string
	for _, c := range e.catalog.Courses {
		doc := tokenSet(c.Title, c.Description, humanize(c.Category))
		for _, s := range c.Skills {
			doc[humanize(s)] = true
			for _, t := range tokenize(humanize(s)) {
				doc[t] = true
			}
		}
		for _, m := range c.Modules {
			for _, t := range tokenize(m.Title) {
				doc[t] = true
			}
		}
		if overlap(query, doc) > 0 {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		for _, c := range e.catalog.Courses {
			ids = append(ids, c.ID)
		}
	}

	var steps []step
	for _, c := range e.catalog.withPrerequisites(ids) {
		for i := range c.Modules {
			m := &c.Modules[i]
			steps = append(steps, step{
				course:      c,
				module:      m,
				title:       m.Title,
				description: fmt.Sprintf("Module %d of %s.", i+1, c.Title),
			})
		}
	}
	return steps
}

func (e *Engine) generatePath(ctx context.Context, userID, goal string, skills map[string]float64) ([]step, []string, error) {
	req := llm.Request{
		Purpose: llm.PurposeLearningPath,
		Learner: userID,
		System:  pathSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: e.buildPathUserMessage(goal, skills)},
		},
		Schema:      PathSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("learning path generation: %w", err)
	}

	var out pathOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, nil, fmt.Errorf("parse learning path response: %w", err)
	}

	var steps []step
	seen := make(map[string]bool)
	for _, m := range out.Milestones {
		course, module, ok := e.catalog.Module(m.ModuleID)
		if !ok || seen[m.ModuleID] {
			e.logger.Debug("dropping milestone", zap.String("module_id", m.ModuleID))
			continue
		}
		seen[m.ModuleID] = true
		title := strings.TrimSpace(m.Title)
		if title == "" {
			title = module.Title
		}
		steps = append(steps, step{course: course, module: module, title: title, description: m.Description})
	}
	if len(steps) == 0 {
		return nil, nil, fmt.Errorf("learning path response named no catalog modules")
	}

	// Keep the model's order within a course but never place a course
	// before its prerequisites.
	var ids []string
	for _, s := range steps {
		ids = append(ids, s.course.ID)
	}
	order := make(map[string]int)
	for i, c := range e.catalog.withPrerequisites(ids) {
		order[c.ID] = i
	}
	slices.SortStableFunc(steps, func(a, b step) int {
		return order[a.course.ID] - order[b.course.ID]
	})

	gaps := []string{}
	for _, g := range out.SkillGaps {
		if g = strings.TrimSpace(g); g != "" {
			gaps = appendUnique(gaps, g)
		}
	}
	return steps, gaps, nil
}

func (e *Engine) formatWeeks(minutes int) string {
	if minutes == 0 {
		return "0 weeks"
	}
	perWeek := max(e.cfg.HoursPerWeek, 1) * 60
	weeks := int(math.Ceil(float64(minutes) / float64(perWeek)))
	if weeks == 1 {
		return "1 week"
	}
	return fmt.Sprintf("%d weeks", weeks)
}

func formatHours(minutes int) string {
	h := float64(minutes) / 60
	if h == math.Trunc(h) {
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(h))
	}
	return fmt.Sprintf("%.1f hours", h)
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
