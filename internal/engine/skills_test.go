package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/brainkit/internal/brainapi"
)

func TestSkillID(t *testing.T) {
	assert.Equal(t, "vector_memory", skillID(" Vector Memory "))
	assert.Equal(t, "vector_memory", skillID("vector-memory"))
	assert.Equal(t, "vector_memory", skillID("vector_memory"))
}

func TestSkillBasedRecommendations(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	recs, err := e.SkillBasedRecommendations(ctx, brainapi.SkillRecommendationRequest{
		UserID:       "u1",
		TargetSkills: []string{"vector memory", "reasoning engines", "memory systems"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.InDelta(t, 0.7/3+0.3*r.Rating/5, r.Confidence, 0.01)
	}
	assert.Contains(t, recs[0].Reason, "Teaches")

	// Skills the learner already has are not targets.
	recs, err = e.SkillBasedRecommendations(ctx, brainapi.SkillRecommendationRequest{
		UserID:        "u1",
		TargetSkills:  []string{"vector memory", "memory systems"},
		CurrentSkills: map[string]float64{"memory_systems": 0.9},
		Limit:         5,
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "course-2", recs[0].CourseID)

	recs, err = e.SkillBasedRecommendations(ctx, brainapi.SkillRecommendationRequest{
		UserID:        "u1",
		TargetSkills:  []string{"memory systems"},
		CurrentSkills: map[string]float64{"memory_systems": 0.9},
	})
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)

	// Dismissed courses are skipped.
	require.NoError(t, e.RecordInteraction(brainapi.Interaction{UserID: "u1", CourseID: "course-2", InteractionType: brainapi.InteractionDismissed}))
	recs, err = e.SkillBasedRecommendations(ctx, brainapi.SkillRecommendationRequest{UserID: "u1", TargetSkills: []string{"vector_memory"}})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSkillBasedRecommendations_Invalid(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SkillBasedRecommendations(ctx, brainapi.SkillRecommendationRequest{TargetSkills: []string{"x"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.SkillBasedRecommendations(ctx, brainapi.SkillRecommendationRequest{UserID: "u1", TargetSkills: []string{" "}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.SkillBasedRecommendations(ctx, brainapi.SkillRecommendationRequest{
		UserID: "u1", TargetSkills: []string{"x"}, CurrentSkills: map[string]float64{"x": -1},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSkillGapAnalysis(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Assess(ctx, brainapi.AssessmentRequest{
		UserID: "u1",
		AssessmentResults: []brainapi.AssessmentResult{
			{Skill: "brain_ai_basics", Score: 0.9},
			{Skill: "memory_systems", Score: 0.3},
		},
	})
	require.NoError(t, err)

	a, err := e.SkillGapAnalysis(ctx, "u1", "Master Neural Networks")
	require.NoError(t, err)
	require.Len(t, a.RequiredSkills, 6)
	assert.Equal(t, "brain_ai_basics", a.RequiredSkills[0])
	require.Len(t, a.Gaps, 5)
	assert.Equal(t, brainapi.SkillGap{Skill: "memory_systems", Current: 0.3, Required: StrengthThreshold, Gap: 0.45}, a.Gaps[0])
	assert.Equal(t, []string{"Brain AI Fundamentals", "Advanced Memory Architectures"}, a.RecommendedCourses)
	// (1 + 0.3/0.75) / 6
	assert.Equal(t, 0.23, a.Readiness)
	assert.Equal(t, 0.9, a.CurrentSkills["brain_ai_basics"])

	_, err = e.SkillGapAnalysis(ctx, "u1", " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.SkillGapAnalysis(ctx, "", "ML Engineer")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
