package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// authorize rejects requests for a user other than the token subject. It
// passes when authentication is off or the token carries no subject.
func (s *Server) authorize(c *gin.Context, userID string) bool {
	sub := c.GetString(ctxSubject)
	if sub == "" || userID == "" || sub == userID {
		return true
	}
	respondError(c, http.StatusForbidden, CodeForbidden, errors.New("token subject does not match user_id"))
	return false
}

func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) health(c *gin.Context) {
	respondOK(c, brainapi.HealthStatus{Status: "healthy", APIVersion: brainapi.APIVersion})
}

func (s *Server) recommendations(c *gin.Context) {
	userID := c.Query("user_id")
	if !s.authorize(c, userID) {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, CodeInvalidRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	filters := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if k == "user_id" || k == "limit" || len(v) == 0 {
			continue
		}
		filters[k] = v[0]
	}

	recs, err := s.engine.Recommend(c.Request.Context(), userID, limit, filters)
	if err != nil {
		s.fail(c, err)
		return
	}
	if recs == nil {
		recs = []brainapi.CourseRecommendation{}
	}
	respondOK(c, gin.H{"recommendations": recs})
}

func (s *Server) recordInteraction(c *gin.Context) {
	var in brainapi.Interaction
	if !s.bind(c, &in) || !s.authorize(c, in.UserID) {
		return
	}
	if err := s.engine.RecordInteraction(in); err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{"status": "recorded"})
}

func (s *Server) learningPath(c *gin.Context) {
	var req brainapi.LearningPathRequest
	if !s.bind(c, &req) || !s.authorize(c, req.UserID) {
		return
	}
	path, err := s.engine.LearningPath(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, path)
}

func (s *Server) analytics(c *gin.Context) {
	userID := c.Query("user_id")
	if !s.authorize(c, userID) {
		return
	}
	a, err := s.engine.Analytics(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, a)
}

func (s *Server) recordEngagement(c *gin.Context) {
	var m brainapi.EngagementMetric
	if !s.bind(c, &m) || !s.authorize(c, m.UserID) {
		return
	}
	if err := s.engine.RecordEngagement(m); err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{"status": "recorded"})
}

func (s *Server) search(c *gin.Context) {
	var req brainapi.SearchRequest
	if !s.bind(c, &req) {
		return
	}
	results, err := s.engine.Search(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{"results": results})
}

type suggestionsBody struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (s *Server) suggestions(c *gin.Context) {
	var req suggestionsBody
	if !s.bind(c, &req) {
		return
	}
	out, err := s.engine.Suggestions(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{"suggestions": out})
}

func (s *Server) tutor(c *gin.Context) {
	var req brainapi.TutorRequest
	if !s.bind(c, &req) || !s.authorize(c, req.UserID) {
		return
	}
	resp, err := s.engine.Tutor(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) assess(c *gin.Context) {
	var req brainapi.AssessmentRequest
	if !s.bind(c, &req) || !s.authorize(c, req.UserID) {
		return
	}
	a, err := s.engine.Assess(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, a)
}

func (s *Server) skillRecommendations(c *gin.Context) {
	var req brainapi.SkillRecommendationRequest
	if !s.bind(c, &req) || !s.authorize(c, req.UserID) {
		return
	}
	recs, err := s.engine.SkillBasedRecommendations(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{"recommendations": recs})
}

// authorizePath checks the token subject against the learner a path was
// generated for. Unknown paths pass so the engine can report them.
func (s *Server) authorizePath(c *gin.Context, pathID string) bool {
	owner, ok := s.engine.PathOwner(pathID)
	if !ok {
		return true
	}
	return s.authorize(c, owner)
}

func (s *Server) updateLearningPath(c *gin.Context) {
	var u brainapi.LearningPathUpdate
	if !s.bind(c, &u) || !s.authorizePath(c, u.PathID) {
		return
	}
	path, err := s.engine.UpdateLearningPath(c.Request.Context(), u)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, path)
}

func (s *Server) learningPathStatus(c *gin.Context) {
	id := c.Param("id")
	if !s.authorizePath(c, id) {
		return
	}
	st, err := s.engine.LearningPathStatus(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, st)
}

func (s *Server) skillGap(c *gin.Context) {
	userID := c.Query("user_id")
	if !s.authorize(c, userID) {
		return
	}
	a, err := s.engine.SkillGapAnalysis(c.Request.Context(), userID, c.Query("target_role"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, a)
}

func (s *Server) summarize(c *gin.Context) {
	var req brainapi.SummaryRequest
	if !s.bind(c, &req) {
		return
	}
	summary, err := s.engine.Summarize(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{"summary": summary})
}

func (s *Server) concepts(c *gin.Context) {
	var req brainapi.ConceptsRequest
	if !s.bind(c, &req) {
		return
	}
	out, err := s.engine.ExtractConcepts(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{"concepts": out})
}

func (s *Server) quiz(c *gin.Context) {
	var req brainapi.QuizRequest
	if !s.bind(c, &req) {
		return
	}
	out, err := s.engine.GenerateQuiz(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondOK(c, gin.H{"questions": out})
}
