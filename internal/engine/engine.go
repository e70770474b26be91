// Package engine is the reference Brain AI backend logic: catalog-driven
// recommendations, learning paths, analytics, search, tutoring and skill
// assessment. When an LLM provider is configured, learning paths and tutor
// replies are generated by the model; otherwise deterministic rules apply.
package engine

import (
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/llm"
)

// ErrInvalidInput marks requests the engine rejects. Wrapped errors carry the
// offending field.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound marks requests for an unknown learning path.
var ErrNotFound = errors.New("not found")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Skill thresholds shared by assessment and analytics.
const (
	StrengthThreshold = 0.75
	GrowthThreshold   = 0.5
)

// Config holds engine tuning.
type Config struct {
	MaxTokens   int
	Temperature float64

	// DefaultLimit applies when a recommendation request has no limit.
	DefaultLimit int
	// SearchLimit caps search results.
	SearchLimit int
	// HoursPerWeek converts path hours into the estimated duration.
	HoursPerWeek int
	// WeeklyMinutesTarget is the study time that counts as full activity.
	WeeklyMinutesTarget float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:           1024,
		Temperature:         0.4,
		DefaultLimit:        5,
		SearchLimit:         10,
		HoursPerWeek:        10,
		WeeklyMinutesTarget: 300,
	}
}

// Engine answers Brain AI requests. It is safe for concurrent use.
type Engine struct {
	catalog  *Catalog
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	learners map[string]*learner

	pathMu    sync.Mutex
	paths     map[string]*trackedPath
	pathOrder []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithProvider enables LLM-backed learning paths and tutoring.
func WithProvider(p llm.Provider) Option {
	return func(e *Engine) { e.provider = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// New creates an Engine serving the given catalog.
func New(catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:  catalog,
		cfg:      DefaultConfig(),
		logger:   zap.NewNop(),
		now:      time.Now,
		learners: make(map[string]*learner),
		paths:    make(map[string]*trackedPath),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Catalog returns the catalog the engine serves.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// learner is the per-user state accumulated from interactions, engagement
// metrics and assessments.
type learner struct {
	skills    map[string]float64
	enrolled  map[string]bool
	dismissed map[string]bool
	viewed    map[string]int
	metrics   []brainapi.EngagementMetric
}

// withLearner runs fn with the user's state under the engine lock.
func (e *Engine) withLearner(userID string, fn func(l *learner)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.learners[userID]
	if !ok {
		l = &learner{
			skills:    make(map[string]float64),
			enrolled:  make(map[string]bool),
			dismissed: make(map[string]bool),
			viewed:    make(map[string]int),
		}
		e.learners[userID] = l
	}
	fn(l)
}

// RecordInteraction stores a learner's reaction to a recommendation.
// Enrolled and dismissed courses are excluded from later recommendations.
func (e *Engine) RecordInteraction(in brainapi.Interaction) error {
	if in.UserID == "" {
		return invalid("user_id is required")
	}
	if _, ok := e.catalog.Course(in.CourseID); !ok {
		return invalid("unknown course_id %q", in.CourseID)
	}
	switch in.InteractionType {
	case brainapi.InteractionViewed, brainapi.InteractionEnrolled, brainapi.InteractionDismissed:
	default:
		return invalid("unknown interaction_type %q", in.InteractionType)
	}

	e.withLearner(in.UserID, func(l *learner) {
		switch in.InteractionType {
		case brainapi.InteractionViewed:
			l.viewed[in.CourseID]++
		case brainapi.InteractionEnrolled:
			l.enrolled[in.CourseID] = true
			delete(l.dismissed, in.CourseID)
		case brainapi.InteractionDismissed:
			l.dismissed[in.CourseID] = true
		}
	})
	e.logger.Debug("interaction recorded",
		zap.String("user_id", in.UserID),
		zap.String("course_id", in.CourseID),
		zap.String("type", string(in.InteractionType)),
	)
	return nil
}

// Engagement metric types understood by the analytics model.
const (
	MetricStudyMinutes    = "study_minutes"
	MetricQuizScore       = "quiz_score"
	MetricLessonCompleted = "lesson_completed"
)

// RecordEngagement stores an engagement signal. A quiz score tagged with a
// "skill" metadata key also nudges that skill's level.
func (e *Engine) RecordEngagement(m brainapi.EngagementMetric) error {
	if m.UserID == "" {
		return invalid("user_id is required")
	}
	switch m.MetricType {
	case MetricStudyMinutes, MetricLessonCompleted:
		if m.Value < 0 {
			return invalid("%s must not be negative", m.MetricType)
		}
	case MetricQuizScore:
		if m.Value < 0 || m.Value > 1 {
			return invalid("quiz_score must be within [0, 1]")
		}
	default:
		return invalid("unknown metric_type %q", m.MetricType)
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = e.now()
	}

	e.withLearner(m.UserID, func(l *learner) {
		l.metrics = append(l.metrics, m)
		if skill := m.Metadata["skill"]; m.MetricType == MetricQuizScore && skill != "" {
			if prev, ok := l.skills[skill]; ok {
				l.skills[skill] = round2((prev + m.Value) / 2)
			} else {
				l.skills[skill] = round2(m.Value)
			}
		}
	})
	return nil
}

// SkillLevels returns a copy of the learner's known skill levels.
func (e *Engine) SkillLevels(userID string) map[string]float64 {
	var out map[string]float64
	e.withLearner(userID, func(l *learner) {
		out = maps.Clone(l.skills)
	})
	return out
}
