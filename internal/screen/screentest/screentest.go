// Package screentest provides an in-memory backend for screen tests.
package screentest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/screen"
)

// FakeAPI answers every backend call from canned data and records what it
// was asked. Set Err to make every call fail.
type FakeAPI struct {
	mu sync.Mutex

	Recs         []brainapi.CourseRecommendation
	Stats        *brainapi.PredictiveAnalytics
	Results      []brainapi.SearchResult
	Suggest      []string
	Reply        brainapi.TutorResponse
	Path         *brainapi.LearningPath
	Err          error
	Interactions []brainapi.Interaction
	Questions    []brainapi.TutorRequest
	Searches     []string
	PathRequests []brainapi.LearningPathRequest
	PathUpdates  []brainapi.LearningPathUpdate
	calls        map[string]int
}

var _ screen.API = (*FakeAPI)(nil)

// New returns a FakeAPI preloaded with a small catalog.
func New() *FakeAPI {
	return &FakeAPI{
		Recs: []brainapi.CourseRecommendation{
			{ID: "rec-1", CourseID: "course-1", CourseName: "Introduction to Brain AI", Reason: "Start here", Confidence: 0.9, MatchPercentage: 90},
			{ID: "rec-2", CourseID: "course-2", CourseName: "Advanced Memory Architectures", Reason: "Builds on vectors", Confidence: 0.6, MatchPercentage: 60},
		},
		Stats: &brainapi.PredictiveAnalytics{
			PredictedScore:        72,
			RecommendedStudyTime:  45,
			CompletionProbability: 0.8,
			StrengthAreas:         []string{"embeddings"},
			ImprovementAreas:      []string{"retrieval"},
			EngagementTrend:       "increasing",
		},
		Results: []brainapi.SearchResult{
			{ID: "course-2", Type: brainapi.ResultCourse, Title: "Advanced Memory Architectures", Snippet: "Tiered memory", RelevanceScore: 0.9},
			{ID: "mod-3", Type: brainapi.ResultModule, Title: "Vector Memory Systems", RelevanceScore: 0.5},
		},
		Suggest: []string{"vector memory", "vector search"},
		Reply:   brainapi.TutorResponse{Response: "Embeddings map text to vectors.", SuggestedTopics: []string{"cosine similarity"}},
		Path: &brainapi.LearningPath{
			ID:         "path-1",
			TargetGoal:        "memory store",
			EstimatedDuration: "4 weeks",
			Milestones: []brainapi.Milestone{
				{ID: "m1", Title: "Vectors", Status: brainapi.MilestoneCompleted},
				{ID: "m2", Title: "Indexing", Description: "Build an ANN index", Status: brainapi.MilestoneInProgress},
				{ID: "m3", Title: "Retrieval", Status: brainapi.MilestonePending},
			},
			SkillGaps: []string{"indexing"},
		},
		calls: make(map[string]int),
	}
}

func (f *FakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.Err
}

// Calls returns how many times the named method was called.
func (f *FakeAPI) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *FakeAPI) Recommendations(ctx context.Context, q brainapi.RecommendationQuery) ([]brainapi.CourseRecommendation, error) {
	if err := f.record("Recommendations"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.Recs
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return append([]brainapi.CourseRecommendation(nil), out...), nil
}

func (f *FakeAPI) SkillBasedRecommendations(ctx context.Context, req brainapi.SkillRecommendationRequest) ([]brainapi.CourseRecommendation, error) {
	return f.Recommendations(ctx, brainapi.RecommendationQuery{UserID: req.UserID, Limit: req.Limit})
}

func (f *FakeAPI) RecordInteraction(ctx context.Context, in brainapi.Interaction) error {
	if err := f.record("RecordInteraction"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Interactions = append(f.Interactions, in)
	return nil
}

func (f *FakeAPI) Analytics(ctx context.Context, userID string) (*brainapi.PredictiveAnalytics, error) {
	if err := f.record("Analytics"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a := *f.Stats
	a.UserID = userID
	a.LastUpdated = time.Now().UTC()
	return &a, nil
}

func (f *FakeAPI) Search(ctx context.Context, req brainapi.SearchRequest) ([]brainapi.SearchResult, error) {
	if err := f.record("Search"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Searches = append(f.Searches, req.Query)
	return append([]brainapi.SearchResult(nil), f.Results...), nil
}

func (f *FakeAPI) SearchSuggestions(ctx context.Context, prefix string, limit int) ([]string, error) {
	if err := f.record("SearchSuggestions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.Suggest {
		if strings.HasPrefix(s, strings.ToLower(prefix)) {
			out = append(out, s)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *FakeAPI) AskTutor(ctx context.Context, req brainapi.TutorRequest) (*brainapi.TutorResponse, error) {
	if err := f.record("AskTutor"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Questions = append(f.Questions, req)
	r := f.Reply
	return &r, nil
}

func (f *FakeAPI) GenerateLearningPath(ctx context.Context, req brainapi.LearningPathRequest) (*brainapi.LearningPath, error) {
	if err := f.record("GenerateLearningPath"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PathRequests = append(f.PathRequests, req)
	p := *f.Path
	p.TargetGoal = req.TargetGoal
	return &p, nil
}

// UpdateLearningPath marks the named milestones completed on the stored path
// and moves the first pending one to in progress.
func (f *FakeAPI) UpdateLearningPath(ctx context.Context, u brainapi.LearningPathUpdate) (*brainapi.LearningPath, error) {
	if err := f.record("UpdateLearningPath"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PathUpdates = append(f.PathUpdates, u)
	p := *f.Path
	p.Milestones = append([]brainapi.Milestone(nil), f.Path.Milestones...)
	active := false
	for i := range p.Milestones {
		m := &p.Milestones[i]
		if slices.Contains(u.CompletedModules, m.ID) {
			m.Status = brainapi.MilestoneCompleted
		}
		if m.Status == brainapi.MilestoneInProgress {
			active = true
		}
	}
	for i := range p.Milestones {
		if !active && p.Milestones[i].Status == brainapi.MilestonePending {
			p.Milestones[i].Status = brainapi.MilestoneInProgress
			break
		}
	}
	f.Path = &p
	return &p, nil
}

// Env returns a screen environment backed by api for the given learner.
func Env(api *FakeAPI, userID string) screen.Env {
	return screen.Env{
		Ctx:    context.Background(),
		API:    api,
		UserID: userID,
	}
}
