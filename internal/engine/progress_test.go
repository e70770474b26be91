package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/brainkit/internal/brainapi"
)

func TestUpdateLearningPath(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	path, err := e.LearningPath(ctx, brainapi.LearningPathRequest{
		UserID:        "user-123",
		TargetGoal:    "Master Neural Networks",
		CurrentSkills: map[string]float64{"brain_ai_basics": 0.9},
	})
	require.NoError(t, err)
	require.Len(t, path.Milestones, 6)

	// A skill reported at the strength threshold completes its module; a
	// catalog module id works as well as a milestone id.
	updated, err := e.UpdateLearningPath(ctx, brainapi.LearningPathUpdate{
		PathID:           path.ID,
		CompletedModules: []string{"course-1-m3"},
		ProgressData:     map[string]float64{"memory_systems": 0.8},
	})
	require.NoError(t, err)
	want := []brainapi.MilestoneStatus{
		brainapi.MilestoneCompleted,
		brainapi.MilestoneCompleted,
		brainapi.MilestoneCompleted,
		brainapi.MilestoneInProgress,
		brainapi.MilestonePending,
		brainapi.MilestonePending,
	}
	for i, m := range updated.Milestones {
		assert.Equal(t, want[i], m.Status, "milestone %d", i)
	}
	assert.Equal(t, 0.8, updated.CurrentSkills["memory_systems"])
	assert.Equal(t, 0.8, e.SkillLevels("user-123")["memory_systems"])

	// The returned path is a copy.
	updated.Milestones[3].Status = brainapi.MilestoneCompleted

	st, err := e.LearningPathStatus(ctx, path.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, st.TotalMilestones)
	assert.Equal(t, 3, st.CompletedCount)
	assert.Equal(t, 0.5, st.Progress)
	assert.Equal(t, path.Milestones[3].Title, st.CurrentMilestone)
	assert.Equal(t, "Master Neural Networks", st.TargetGoal)
	assert.Equal(t, testNow, st.UpdatedAt)

	// A low level never undoes completion.
	again, err := e.UpdateLearningPath(ctx, brainapi.LearningPathUpdate{
		PathID:       path.ID,
		ProgressData: map[string]float64{"memory_systems": 0.1},
	})
	require.NoError(t, err)
	assert.Equal(t, brainapi.MilestoneCompleted, again.Milestones[1].Status)
}

func TestUpdateLearningPath_Invalid(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	path, err := e.LearningPath(ctx, brainapi.LearningPathRequest{UserID: "u1", TargetGoal: "Brain AI Fundamentals"})
	require.NoError(t, err)
	first := path.Milestones[0].ID

	tests := []struct {
		name   string
		update brainapi.LearningPathUpdate
		want   error
	}{
		{"missing id", brainapi.LearningPathUpdate{}, ErrInvalidInput},
		{"unknown path", brainapi.LearningPathUpdate{PathID: "nope"}, ErrNotFound},
		{"unknown module", brainapi.LearningPathUpdate{PathID: path.ID, CompletedModules: []string{first, "bogus"}}, ErrInvalidInput},
		{"level out of range", brainapi.LearningPathUpdate{PathID: path.ID, ProgressData: map[string]float64{"memory_systems": 1.5}}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.UpdateLearningPath(ctx, tt.update)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// A rejected update leaves the path alone.
	st, err := e.LearningPathStatus(ctx, path.ID)
	require.NoError(t, err)
	assert.Zero(t, st.CompletedCount)

	_, err = e.LearningPathStatus(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	owner, ok := e.PathOwner(path.ID)
	assert.True(t, ok)
	assert.Equal(t, "u1", owner)
}
