package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// Assess scores graded results per skill. A result with a MaxScore is
// normalized by it; otherwise Score is taken as already in [0,1]. Each
// skill's level is the mean of its results and the overall score the mean
// of the skill levels. Levels are remembered for recommendations, paths and
// analytics.
func (e *Engine) Assess(ctx context.Context, req brainapi.AssessmentRequest) (*brainapi.SkillAssessment, error) {
	if req.UserID == "" {
		return nil, invalid("user_id is required")
	}
	if len(req.AssessmentResults) == 0 {
		return nil, invalid("assessment_results must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, r := range req.AssessmentResults {
		skill := strings.TrimSpace(r.Skill)
		if skill == "" {
			return nil, invalid("assessment_results[%d].skill is required", i)
		}
		score := r.Score
		if r.MaxScore > 0 {
			score = r.Score / r.MaxScore
		}
		if score < 0 || score > 1 {
			return nil, invalid("assessment_results[%d] score out of range", i)
		}
		sums[skill] += score
		counts[skill]++
	}

	scores := make(map[string]float64, len(sums))
	var total float64
	for skill, sum := range sums {
		scores[skill] = round2(sum / float64(counts[skill]))
		total += scores[skill]
	}

	e.withLearner(req.UserID, func(l *learner) {
		for skill, v := range scores {
			l.skills[skill] = v
		}
	})

	strengths, growth := splitSkills(scores)
	return &brainapi.SkillAssessment{
		OverallScore:    round2(total / float64(len(scores))),
		SkillScores:     scores,
		Recommendations: e.assessmentAdvice(scores),
		StrengthAreas:   strengths,
		GrowthAreas:     growth,
		AssessedAt:      e.now(),
	}, nil
}

// assessmentAdvice suggests a module for each growth skill, and the next
// course when there is nothing left to shore up.
func (e *Engine) assessmentAdvice(scores map[string]float64) []string {
	names := make([]string, 0, len(scores))
	for k := range scores {
		names = append(names, k)
	}
	slices.Sort(names)

	advice := []string{}
	for _, skill := range names {
		if scores[skill] >= GrowthThreshold {
			continue
		}
		if c, m := e.moduleForSkill(skill); m != nil {
			advice = append(advice, fmt.Sprintf("Review %s in %s.", m.Title, c.Title))
		} else {
			advice = append(advice, fmt.Sprintf("Practice %s with additional exercises.", humanize(skill)))
		}
	}
	if len(advice) > 0 {
		return advice
	}

	for _, c := range e.catalog.Courses {
		for _, m := range c.Modules {
			if v, ok := scores[m.Skill]; !ok || v < StrengthThreshold {
				return []string{fmt.Sprintf("Continue with %s in %s.", m.Title, c.Title)}
			}
		}
	}
	return []string{"You have mastered every assessed skill. Consider the capstone project."}
}

func (e *Engine) moduleForSkill(skill string) (*Course, *Module) {
	for _, c := range e.catalog.CoursesForSkill(skill) {
		for i := range c.Modules {
			if c.Modules[i].Skill == skill {
				return c, &c.Modules[i]
			}
		}
	}
	return nil, nil
}
