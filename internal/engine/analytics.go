package engine

import (
	"context"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/abhisek/brainkit/internal/brainapi"
)

const week = 7 * 24 * time.Hour

// Engagement trends.
const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
	TrendDeclining  = "declining"
)

// Analytics derives a predictive snapshot from the learner's recorded
// engagement and skill levels. It is deterministic for a given history and
// clock.
//
// Study minutes over the last week against the week before give the trend
// (a swing of more than 10% either way). Activity is last week's minutes
// against the weekly target. Predicted score blends mean quiz score (0.7)
// with activity (0.3). Enrolled courses with no engagement tagged with their
// course_id in the last two weeks are at risk.
func (e *Engine) Analytics(ctx context.Context, userID string) (*brainapi.PredictiveAnalytics, error) {
	if userID == "" {
		return nil, invalid("user_id is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := e.now()
	var (
		recent, previous float64
		quizSum          float64
		quizN            int
		touched          = make(map[string]bool)
		enrolled         []string
		skills           map[string]float64
	)
	e.withLearner(userID, func(l *learner) {
		for _, m := range l.metrics {
			age := now.Sub(m.Timestamp)
			if age < 0 {
				age = 0
			}
			switch m.MetricType {
			case MetricStudyMinutes:
				switch {
				case age < week:
					recent += m.Value
				case age < 2*week:
					previous += m.Value
				}
			case MetricQuizScore:
				quizSum += m.Value
				quizN++
			}
			if id := m.Metadata["course_id"]; id != "" && age < 2*week {
				touched[id] = true
			}
		}
		for id := range l.enrolled {
			enrolled = append(enrolled, id)
		}
		skills = maps.Clone(l.skills)
	})

	quiz := 0.5
	if quizN > 0 {
		quiz = quizSum / float64(quizN)
	}
	activity := clamp01(recent / e.cfg.WeeklyMinutesTarget)
	trend := trendOf(recent, previous)

	trendFactor := 0.5
	switch trend {
	case TrendIncreasing:
		trendFactor = 1
	case TrendDeclining:
		trendFactor = 0
	}

	study := 30
	if quiz < 0.6 {
		study += 15
	}
	if activity < 0.5 {
		study += 15
	}
	if trend == TrendDeclining {
		study += 15
	}

	slices.Sort(enrolled)
	atRisk := []string{}
	for _, id := range enrolled {
		if !touched[id] {
			atRisk = append(atRisk, id)
		}
	}

	strengths, growth := splitSkills(skills)
	return &brainapi.PredictiveAnalytics{
		UserID:                userID,
		PredictedScore:        math.Round(1000*(0.7*quiz+0.3*activity)) / 10,
		RecommendedStudyTime:  min(study, 90),
		AtRiskCourses:         atRisk,
		StrengthAreas:         strengths,
		ImprovementAreas:      growth,
		CompletionProbability: round2(clamp01(0.4*activity + 0.4*quiz + 0.2*trendFactor)),
		EngagementTrend:       trend,
		LastUpdated:           now,
	}, nil
}

func trendOf(recent, previous float64) string {
	switch {
	case previous == 0 && recent == 0:
		return TrendStable
	case previous == 0:
		return TrendIncreasing
	case recent > previous*1.1:
		return TrendIncreasing
	case recent < previous*0.9:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// splitSkills returns the humanized names of skills at or above the strength
// threshold and of skills below the growth threshold, each sorted.
func splitSkills(skills map[string]float64) (strengths, growth []string) {
	strengths, growth = []string{}, []string{}
	names := make([]string, 0, len(skills))
	for k := range skills {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, k := range names {
		switch v := skills[k]; {
		case v >= StrengthThreshold:
			strengths = append(strengths, humanize(k))
		case v < GrowthThreshold:
			growth = append(growth, humanize(k))
		}
	}
	return strengths, growth
}
