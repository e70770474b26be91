package engine

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// recommendFilter is the parsed form of the recommendation query filters.
type recommendFilter struct {
	categories  []string
	level       Level
	minRating   float64
	maxDuration int
}

func parseFilter(raw map[string]string) (recommendFilter, error) {
	var f recommendFilter
	for k, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		switch k {
		case "category", "categories":
			for _, c := range strings.Split(v, ",") {
				if c = strings.TrimSpace(strings.ToLower(c)); c != "" {
					f.categories = append(f.categories, c)
				}
			}
		case "difficulty", "level":
			f.level = Level(strings.ToLower(v))
			if f.level.rank() == 0 {
				return f, invalid("unknown difficulty %q", v)
			}
		case "min_rating", "rating_min":
			r, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return f, invalid("%s must be a number", k)
			}
			f.minRating = r
		case "max_duration_hours", "duration_max":
			d, err := strconv.Atoi(v)
			if err != nil {
				return f, invalid("%s must be an integer", k)
			}
			f.maxDuration = d
		}
	}
	return f, nil
}

func (f recommendFilter) match(c *Course) bool {
	if len(f.categories) > 0 && !slices.Contains(f.categories, strings.ToLower(c.Category)) {
		return false
	}
	if f.level != "" && c.Level != f.level {
		return false
	}
	if c.Rating < f.minRating {
		return false
	}
	if f.maxDuration > 0 && c.DurationHours > f.maxDuration {
		return false
	}
	return true
}

// Recommend ranks catalog courses for a learner. Enrolled and dismissed
// courses are skipped. Each course is scored from three signals:
//
//	novelty   0.5  share of the course's skills the learner has not mastered
//	readiness 0.3  share of prerequisites the learner is enrolled in
//	quality   0.2  rating out of 5
//
// Courses more than one level above the learner's highest enrollment lose
// 0.1 per extra level.
func (e *Engine) Recommend(ctx context.Context, userID string, limit int, filters map[string]string) ([]brainapi.CourseRecommendation, error) {
	if userID == "" {
		return nil, invalid("user_id is required")
	}
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	f, err := parseFilter(filters)
	if err != nil {
		return nil, err
	}

	var (
		skills   map[string]float64
		enrolled map[string]bool
		skip     map[string]bool
	)
	e.withLearner(userID, func(l *learner) {
		skills = maps.Clone(l.skills)
		enrolled = maps.Clone(l.enrolled)
		skip = maps.Clone(l.dismissed)
	})
	reach := 1
	for id := range enrolled {
		if c, ok := e.catalog.Course(id); ok {
			reach = max(reach, c.Level.rank()+1)
		}
	}

	var recs []brainapi.CourseRecommendation
	for i := range e.catalog.Courses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := &e.catalog.Courses[i]
		if enrolled[c.ID] || skip[c.ID] || !f.match(c) {
			continue
		}

		var gaps []string
		for _, s := range c.Skills {
			if skills[s] < StrengthThreshold {
				gaps = append(gaps, s)
			}
		}
		novelty := 1.0
		if len(c.Skills) > 0 {
			novelty = float64(len(gaps)) / float64(len(c.Skills))
		}

		var missing []string
		for _, p := range c.Prerequisites {
			if !enrolled[p] {
				missing = append(missing, p)
			}
		}
		readiness := 1.0
		if len(c.Prerequisites) > 0 {
			readiness = 1 - float64(len(missing))/float64(len(c.Prerequisites))
		}

		score := 0.5*novelty + 0.3*readiness + 0.2*c.Rating/5
		if stretch := c.Level.rank() - reach; stretch > 0 {
			score -= 0.1 * float64(stretch)
		}
		confidence := round2(clamp01(score))
		recs = append(recs, brainapi.CourseRecommendation{
			ID:              "rec-" + c.ID,
			CourseID:        c.ID,
			CourseName:      c.Title,
			Reason:          e.reason(c, gaps, missing),
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

func (e *Engine) reason(c *Course, gaps, missing []string) string {
	var parts []string
	if len(gaps) > 0 {
		parts = append(parts, "Builds "+strings.Join(humanizeAll(gaps), ", ")+".")
	} else {
		parts = append(parts, "Reinforces skills you already have.")
	}
	if len(missing) > 0 {
		titles := make([]string, 0, len(missing))
		for _, id := range missing {
			if p, ok := e.catalog.Course(id); ok {
				titles = append(titles, p.Title)
			}
		}
		parts = append(parts, "Take "+strings.Join(titles, " and ")+" first.")
	}
	parts = append(parts, fmt.Sprintf("Rated %.1f by learners.", c.Rating))
	return strings.Join(parts, " ")
}

func humanizeAll(skills []string) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = humanize(s)
	}
	return out
}
