package engine

import (
	"context"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// skillID turns a skill as a learner might type it ("Vector Memory",
// "vector-memory") into its catalog identifier.
func skillID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}

// SkillBasedRecommendations ranks courses by how many of the learner's
// missing target skills they teach. Target skills already at the strength
// threshold are ignored, so a learner who has them all gets no courses.
//
//	confidence = 0.7 * share of missing targets taught + 0.3 * rating/5
func (e *Engine) SkillBasedRecommendations(ctx context.Context, req brainapi.SkillRecommendationRequest) ([]brainapi.CourseRecommendation, error) {
	if req.UserID == "" {
		return nil, invalid("user_id is required")
	}
	for skill, level := range req.CurrentSkills {
		if level < 0 || level > 1 {
			return nil, invalid("current_skills[%s] must be within [0, 1]", skill)
		}
	}
	var targets []string
	for _, t := range req.TargetSkills {
		if id := skillID(t); id != "" && !slices.Contains(targets, id) {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return nil, invalid("target_skills must not be empty")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}

	skills := e.SkillLevels(req.UserID)
	for k, v := range req.CurrentSkills {
		skills[skillID(k)] = v
	}
	var enrolled, skip map[string]bool
	e.withLearner(req.UserID, func(l *learner) {
		enrolled = maps.Clone(l.enrolled)
		skip = maps.Clone(l.dismissed)
	})

	var missing []string
	for _, t := range targets {
		if skills[t] < StrengthThreshold {
			missing = append(missing, t)
		}
	}

	recs := []brainapi.CourseRecommendation{}
	if len(missing) == 0 {
		return recs, nil
	}
	for i := range e.catalog.Courses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := &e.catalog.Courses[i]
		if enrolled[c.ID] || skip[c.ID] {
			continue
		}
		var taught []string
		for _, s := range missing {
			if slices.Contains(c.Skills, s) {
				taught = append(taught, s)
			}
		}
		if len(taught) == 0 {
			continue
		}
		coverage := float64(len(taught)) / float64(len(missing))
		confidence := round2(clamp01(0.7*coverage + 0.3*c.Rating/5))
		recs = append(recs, brainapi.CourseRecommendation{
			ID:              "rec-" + c.ID,
			CourseID:        c.ID,
			CourseName:      c.Title,
			Reason:          "Teaches " + strings.Join(humanizeAll(taught), ", ") + ", which you are aiming for.",
			Confidence:      confidence,
			MatchPercentage: int(math.Round(confidence * 100)),
			Category:        c.Category,
			Difficulty:      string(c.Level),
			Rating:          c.Rating,
			SkillsGained:    humanizeAll(c.Skills),
		})
	}

	slices.SortStableFunc(recs, func(a, b brainapi.CourseRecommendation) int {
		if a.Confidence != b.Confidence {
			if a.Confidence > b.Confidence {
				return -1
			}
			return 1
		}
		return strings.Compare(a.CourseID, b.CourseID)
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// SkillGapAnalysis compares what the engine knows about a learner with the
// skills taught on the path to targetRole. Every required skill is expected
// at the strength threshold; readiness is the mean share of that level the
// learner already has.
func (e *Engine) SkillGapAnalysis(ctx context.Context, userID, targetRole string) (*brainapi.SkillGapAnalysis, error) {
	if userID == "" {
		return nil, invalid("user_id is required")
	}
	role := strings.TrimSpace(targetRole)
	if role == "" {
		return nil, invalid("target_role is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	current := e.SkillLevels(userID)
	out := &brainapi.SkillGapAnalysis{
		UserID:             userID,
		TargetRole:         role,
		CurrentSkills:      current,
		RequiredSkills:     []string{},
		Gaps:               []brainapi.SkillGap{},
		RecommendedCourses: []string{},
	}

	steps := e.planPath(role)
	var readiness float64
	for _, s := range steps {
		skill := s.module.Skill
		if slices.Contains(out.RequiredSkills, skill) {
			continue
		}
		out.RequiredSkills = append(out.RequiredSkills, skill)
		have := current[skill]
		readiness += min(have/StrengthThreshold, 1)
		if have >= StrengthThreshold {
			continue
		}
		out.Gaps = append(out.Gaps, brainapi.SkillGap{
			Skill:    skill,
			Current:  have,
			Required: StrengthThreshold,
			Gap:      round2(StrengthThreshold - have),
		})
		out.RecommendedCourses = appendUnique(out.RecommendedCourses, s.course.Title)
	}
	if n := len(out.RequiredSkills); n > 0 {
		out.Readiness = round2(readiness / float64(n))
	}
	return out, nil
}
