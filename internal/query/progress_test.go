package query

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/brainkit/internal/brainapi"
)

func TestLearningPath_Complete(t *testing.T) {
	mock := brainapi.NewMockDoer(
		brainapi.MockResponse{Body: `{"id":"path-1","targetGoal":"Master Neural Networks","milestones":[{"id":"m1","title":"Intro","status":"in_progress"},{"id":"m2","title":"Memory","status":"pending"}]}`},
		brainapi.MockResponse{Body: `{"id":"path-1","targetGoal":"Master Neural Networks","milestones":[{"id":"m1","title":"Intro","status":"completed"},{"id":"m2","title":"Memory","status":"in_progress"}]}`},
	)
	lp := NewLearningPath(newClient(mock), LearningPathParams{UserID: "user-123", TargetGoal: "Master Neural Networks"})
	defer lp.Close()
	lp.Wait()

	require.NoError(t, lp.Complete("m1"))
	lp.Wait()

	require.Equal(t, 2, mock.CallCount())
	call := mock.LastCall()
	assert.Equal(t, http.MethodPut, call.Method)
	assert.Equal(t, "/api/v1/brain-ai/learning-path", call.Path)
	assert.JSONEq(t, `{"path_id":"path-1","completed_modules":["m1"],"progress_data":{}}`, string(call.Body))

	st := lp.State()
	require.NotNil(t, st.Data)
	assert.Equal(t, brainapi.MilestoneCompleted, st.Data.Milestones[0].Status)
	assert.Equal(t, brainapi.MilestoneInProgress, st.Data.Milestones[1].Status)
}

func TestLearningPath_CompleteWithoutPath(t *testing.T) {
	mock := brainapi.NewMockDoer()
	lp := NewLearningPath(newClient(mock), LearningPathParams{UserID: "user-123"})
	defer lp.Close()

	assert.ErrorIs(t, lp.Complete("m1"), ErrNoPath)
	assert.Equal(t, 0, mock.CallCount())
}

func TestRecommendations_TargetSkills(t *testing.T) {
	mock := brainapi.NewMockDoer(
		brainapi.MockResponse{Body: `{"recommendations":[{"id":"rec-course-2","courseId":"course-2","courseName":"Advanced Memory Architectures","confidence":0.98,"matchPercentage":98}]}`},
		brainapi.MockResponse{Body: `{"recommendations":[]}`},
	)
	r := NewRecommendations(newClient(mock), RecommendationParams{
		UserID:       "user-123",
		Limit:        3,
		Filters:      map[string]string{"category": "ai"},
		TargetSkills: []string{"vector_memory"},
	})
	defer r.Close()
	r.Wait()

	call := mock.LastCall()
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/api/v1/brain-ai/recommendations/skill-based", call.Path)
	assert.JSONEq(t, `{"user_id":"user-123","current_skills":{},"target_skills":["vector_memory"],"limit":3}`, string(call.Body))
	require.Len(t, r.State().Data, 1)
	assert.Equal(t, "course-2", r.State().Data[0].CourseID)

	// Dropping the targets goes back to the profile endpoint.
	p := r.Params()
	p.TargetSkills = nil
	r.SetParams(p)
	r.Wait()
	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, http.MethodGet, mock.LastCall().Method)
	assert.Equal(t, "/api/v1/brain-ai/recommendations", mock.LastCall().Path)
}

func TestSkillGap(t *testing.T) {
	mock := brainapi.NewMockDoer(brainapi.MockResponse{
		Body: `{"userId":"user-123","targetRole":"ML Engineer","requiredSkills":["embeddings","retrieval"],"gaps":[{"skill":"retrieval","current":0.4,"required":0.75,"gap":0.35}],"readiness":0.77}`,
	})
	g := NewSkillGap(newClient(mock), SkillGapParams{UserID: "user-123", TargetRole: " ML Engineer "})
	defer g.Close()
	g.Wait()

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "/api/v1/brain-ai/skills/gap-analysis", mock.LastCall().Path)
	assert.Equal(t, "target_role=ML+Engineer&user_id=user-123", mock.LastCall().Query)

	st := g.State()
	require.NotNil(t, st.Data)
	assert.Equal(t, 0.77, st.Data.Readiness)
	require.Len(t, st.Data.Gaps, 1)
	assert.Equal(t, "retrieval", st.Data.Gaps[0].Skill)

	// Same params: no refetch.
	g.SetParams(SkillGapParams{UserID: "user-123", TargetRole: " ML Engineer "})
	g.Wait()
	assert.Equal(t, 1, mock.CallCount())

	g.SetParams(SkillGapParams{UserID: "user-123", TargetRole: "  "})
	g.Wait()
	assert.Equal(t, 1, mock.CallCount())
}
