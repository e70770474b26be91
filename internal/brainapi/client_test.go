package brainapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/brainkit/internal/store"
)

func TestRecommendations_QueryParams(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"recommendations":[{"id":"rec-1","courseId":"course-1","courseName":"Brain AI Fundamentals","reason":"Matches your goals","confidence":0.9,"matchPercentage":90}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	recs, err := c.Recommendations(context.Background(), RecommendationQuery{
		UserID:  "user-123",
		Limit:   5,
		Filters: map[string]string{"category": "ai", "level": "", "limit": "99"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/brain-ai/recommendations", gotPath)
	assert.Equal(t, "category=ai&limit=5&user_id=user-123", gotQuery)
	require.Len(t, recs, 1)
	assert.Equal(t, "rec-1", recs[0].ID)
	assert.Equal(t, "course-1", recs[0].CourseID)
	assert.Equal(t, 90, recs[0].MatchPercentage)
}

func TestGenerateLearningPath_Body(t *testing.T) {
	mock := NewMockDoer(MockResponse{Body: LearningPath{TargetGoal: "Become a Data Scientist", EstimatedDuration: "6 months"}})
	c := New("http://brain.test", WithDoer(mock))

	path, err := c.GenerateLearningPath(context.Background(), LearningPathRequest{
		UserID:     "user-123",
		TargetGoal: "Become a Data Scientist",
	})
	require.NoError(t, err)
	assert.Equal(t, "6 months", path.EstimatedDuration)

	call := mock.LastCall()
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/api/v1/brain-ai/learning-path", call.Path)
	assert.Equal(t, "application/json", call.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"user_id":"user-123","target_goal":"Become a Data Scientist","current_skills":{}}`, string(call.Body))
}

func TestSearch_EmptyUserContext(t *testing.T) {
	mock := NewMockDoer(MockResponse{Body: `{"results":[{"id":"r1","type":"course","title":"Vector Memory Systems","relevanceScore":0.8}]}`})
	c := New("http://brain.test", WithDoer(mock))

	results, err := c.Search(context.Background(), SearchRequest{Query: "memory"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ResultCourse, results[0].Type)
	assert.JSONEq(t, `{"query":"memory","user_context":{}}`, string(mock.LastCall().Body))
}

func TestAskTutor_Body(t *testing.T) {
	mock := NewMockDoer(MockResponse{Body: TutorResponse{Response: "Hello!"}})
	c := New("http://brain.test", WithDoer(mock))

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	resp, err := c.AskTutor(context.Background(), TutorRequest{
		UserID:              "u1",
		ConversationHistory: []Message{{ID: "m1", Role: RoleUser, Content: "hi", Timestamp: ts}},
		CurrentContent:      "Memory Systems Fundamentals",
		Question:            "what is recall?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", resp.Response)

	var body map[string]any
	require.NoError(t, json.Unmarshal(mock.LastCall().Body, &body))
	assert.Equal(t, "what is recall?", body["question"])
	assert.Equal(t, "Memory Systems Fundamentals", body["current_content"])
	history := body["conversation_history"].([]any)
	require.Len(t, history, 1)
	assert.Equal(t, "user", history[0].(map[string]any)["role"])
}

func TestNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analytics(context.Background(), "user-123")
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 500", err.Error())
	assert.Equal(t, 500, StatusCode(err))

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Contains(t, he.Body, "backend exploded")
	assert.Equal(t, 3*time.Second, he.RetryAfter)
	assert.True(t, he.Temporary())
}

func TestTransportErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection refused")
	c := New("http://brain.test", WithDoer(NewMockDoer(MockResponse{Err: boom})))

	_, err := c.Analytics(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, StatusCode(err))
}

func TestDecodeError(t *testing.T) {
	c := New("http://brain.test", WithDoer(NewMockDoer(MockResponse{Body: `{not json`})))
	_, err := c.Analytics(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestTokenAndUserAgent(t *testing.T) {
	mock := NewMockDoer(MockResponse{Body: `{}`})
	c := New("http://brain.test/", WithDoer(mock), WithToken("secret"), WithUserAgent("tests/1"))

	require.NoError(t, c.RecordInteraction(context.Background(), Interaction{
		UserID: "u1", CourseID: "c1", InteractionType: InteractionEnrolled,
	}))
	call := mock.LastCall()
	assert.Equal(t, "Bearer secret", call.Header.Get("Authorization"))
	assert.Equal(t, "tests/1", call.Header.Get("User-Agent"))
	assert.Equal(t, "/api/v1/brain-ai/recommendations/interact", call.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(call.Body, &body))
	assert.Equal(t, "enrolled", body["interaction_type"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"same major", "v1.4.2", false},
		{"no v prefix", "1.0.0", false},
		{"newer major", "v2.0.0", true},
		{"garbage", "latest", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockDoer(MockResponse{Body: HealthStatus{Status: "ok", APIVersion: tt.version}})
			c := New("http://brain.test", WithDoer(mock))

			hs, err := c.Health(context.Background())
			assert.Equal(t, "/healthz", mock.LastCall().Path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompatibleServer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", hs.Status)
		})
	}
}

func TestRateLimitHonorsContext(t *testing.T) {
	mock := NewMockDoer(MockResponse{Body: `{}`}, MockResponse{Body: `{}`})
	c := New("http://brain.test", WithDoer(mock), WithRateLimit(0.001, 1))

	require.NoError(t, c.RecordEngagement(context.Background(), EngagementMetric{UserID: "u1", MetricType: "minutes", Value: 5}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.RecordEngagement(ctx, EngagementMetric{UserID: "u1", MetricType: "minutes", Value: 5})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestWithRecorder(t *testing.T) {
	s, err := store.Open(t.TempDir() + "/events.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mock := NewMockDoer(
		MockResponse{Body: `{"recommendations":[]}`},
		MockResponse{Status: http.StatusBadGateway},
	)
	c := New("http://brain.test", WithDoer(WithRecorder(mock, s.EventRepo(), nil)))

	_, err = c.Recommendations(context.Background(), RecommendationQuery{UserID: "u1"})
	require.NoError(t, err)
	_, err = c.Analytics(context.Background(), "u1")
	require.Error(t, err)

	events, err := s.EventRepo().QueryRequests(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "/analytics", events[0].Endpoint)
	assert.Equal(t, 502, events[0].StatusCode)
	assert.False(t, events[0].Success)
	assert.Equal(t, "HTTP error! status: 502", events[0].ErrorMessage)
	assert.Equal(t, "/recommendations", events[1].Endpoint)
	assert.True(t, events[1].Success)
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	mock := NewMockDoer(
		MockResponse{Body: `{"results":[]}`},
		MockResponse{Err: errors.New("reset")},
	)
	c := New("http://brain.test", WithDoer(WithMetrics(mock, m)))

	_, _ = c.Search(context.Background(), SearchRequest{Query: "a"})
	_, _ = c.Search(context.Background(), SearchRequest{Query: "b"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "/search", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "/search", "error")))
}

func TestWithTracingInjectsHeaders(t *testing.T) {
	mock := NewMockDoer(MockResponse{Body: `{}`})
	c := New("http://brain.test", WithDoer(WithTracing(mock)))

	require.NoError(t, c.RecordEngagement(context.Background(), EngagementMetric{UserID: "u1", MetricType: "quiz", Value: 0.5}))
	assert.Equal(t, 1, mock.CallCount())
}

func TestEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://x/api/v1/brain-ai/skills/assess", nil)
	assert.Equal(t, "/skills/assess", Endpoint(req))

	req = httptest.NewRequest(http.MethodGet, "http://x/healthz", nil)
	assert.Equal(t, "/healthz", Endpoint(req))

	req = httptest.NewRequest(http.MethodGet, "http://x/api/v1/brain-ai/learning-path/path-42/status", nil)
	assert.Equal(t, "/learning-path/:id/status", Endpoint(req))

	req = httptest.NewRequest(http.MethodPut, "http://x/api/v1/brain-ai/learning-path", nil)
	assert.Equal(t, "/learning-path", Endpoint(req))
}

func TestSkillBasedRecommendations_Body(t *testing.T) {
	mock := NewMockDoer(MockResponse{Body: `{"recommendations":[{"id":"rec-course-2","courseId":"course-2","courseName":"Advanced Memory Architectures","confidence":0.8,"matchPercentage":80}]}`})
	c := New("http://brain.test", WithDoer(mock))

	recs, err := c.SkillBasedRecommendations(context.Background(), SkillRecommendationRequest{
		UserID:       "user-123",
		TargetSkills: []string{"vector_memory"},
		Limit:        3,
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "course-2", recs[0].CourseID)

	call := mock.LastCall()
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/api/v1/brain-ai/recommendations/skill-based", call.Path)
	assert.JSONEq(t, `{"user_id":"user-123","current_skills":{},"target_skills":["vector_memory"],"limit":3}`, string(call.Body))
}

func TestLearningPathProgress(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Body: `{"id":"path-1","targetGoal":"Master Neural Networks","milestones":[{"id":"m1","title":"Intro","status":"completed"}]}`},
		MockResponse{Body: `{"pathId":"path-1","totalMilestones":4,"completedMilestones":1,"progress":0.25,"estimatedRemaining":"2 weeks"}`},
	)
	c := New("http://brain.test", WithDoer(mock))

	lp, err := c.UpdateLearningPath(context.Background(), LearningPathUpdate{PathID: "path-1", CompletedModules: []string{"m1"}})
	require.NoError(t, err)
	assert.Equal(t, MilestoneCompleted, lp.Milestones[0].Status)
	call := mock.LastCall()
	assert.Equal(t, http.MethodPut, call.Method)
	assert.Equal(t, "/api/v1/brain-ai/learning-path", call.Path)
	assert.JSONEq(t, `{"path_id":"path-1","completed_modules":["m1"],"progress_data":{}}`, string(call.Body))

	st, err := c.LearningPathStatus(context.Background(), "path 1")
	require.NoError(t, err)
	assert.Equal(t, 0.25, st.Progress)
	assert.Equal(t, 1, st.CompletedCount)
	call = mock.LastCall()
	assert.Equal(t, http.MethodGet, call.Method)
	assert.Equal(t, "/api/v1/brain-ai/learning-path/path 1/status", call.Path)
}

func TestSkillGapAnalysis_Query(t *testing.T) {
	mock := NewMockDoer(MockResponse{Body: `{"targetRole":"ML Engineer","requiredSkills":["embeddings"],"gaps":[{"skill":"embeddings","current":0.2,"required":0.75,"gap":0.55}],"readiness":0.27}`})
	c := New("http://brain.test", WithDoer(mock))

	a, err := c.SkillGapAnalysis(context.Background(), "user-123", "ML Engineer")
	require.NoError(t, err)
	require.Len(t, a.Gaps, 1)
	assert.Equal(t, 0.55, a.Gaps[0].Gap)

	call := mock.LastCall()
	assert.Equal(t, "/api/v1/brain-ai/skills/gap-analysis", call.Path)
	assert.Equal(t, "target_role=ML+Engineer&user_id=user-123", call.Query)
}

func TestContentEndpoints(t *testing.T) {
	mock := NewMockDoer(
		MockResponse{Body: `{"summary":"Memory consolidates."}`},
		MockResponse{Body: `{"concepts":[{"term":"Consolidation","definition":"Moving traces to long-term storage."}]}`},
		MockResponse{Body: `{"questions":[{"question":"What is consolidation?","options":["a","b"],"answer":1,"difficulty":"easy"}]}`},
	)
	c := New("http://brain.test", WithDoer(mock))
	ctx := context.Background()

	summary, err := c.SummarizeContent(ctx, SummaryRequest{Content: "text", ContentType: ContentText, MaxLength: 80})
	require.NoError(t, err)
	assert.Equal(t, "Memory consolidates.", summary)
	assert.Equal(t, "/api/v1/brain-ai/content/summarize", mock.LastCall().Path)
	assert.JSONEq(t, `{"content":"text","content_type":"text","max_length":80}`, string(mock.LastCall().Body))

	concepts, err := c.ExtractConcepts(ctx, ConceptsRequest{Content: "text", NumConcepts: 3})
	require.NoError(t, err)
	require.Len(t, concepts, 1)
	assert.Equal(t, "Consolidation", concepts[0].Term)
	assert.Equal(t, "/api/v1/brain-ai/content/concepts", mock.LastCall().Path)

	questions, err := c.GenerateQuiz(ctx, QuizRequest{Content: "text", NumQuestions: 1, Difficulty: "easy"})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, 1, questions[0].Answer)
	assert.Equal(t, "/api/v1/brain-ai/content/quiz", mock.LastCall().Path)
}
