package brainapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"golang.org/x/time/rate"
)

// APIVersion is the backend API version this client is written against.
const APIVersion = "v1.0.0"

const apiPrefix = "/api/v1/brain-ai"

// maxErrorBody caps how much of a failed response body is kept on HTTPError.
const maxErrorBody = 4 << 10

// Doer sends an HTTP request. *http.Client satisfies it; tests substitute
// MockDoer.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Client talks to the Brain AI backend over HTTP+JSON.
type Client struct {
	baseURL   string
	doer      Doer
	token     string
	userAgent string
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDoer sets the transport used for every request.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithToken sends the token as a Bearer Authorization header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit throttles outgoing requests to perSecond with the given burst.
// A non-positive perSecond disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		doer:      &http.Client{},
		userAgent: "brainkit/" + APIVersion,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the backend root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Recommendations fetches course recommendations for a learner.
func (c *Client) Recommendations(ctx context.Context, q RecommendationQuery) ([]CourseRecommendation, error) {
	params := url.Values{}
	params.Set("user_id", q.UserID)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "user_id" || k == "limit" || q.Filters[k] == "" {
			continue
		}
		params.Set(k, q.Filters[k])
	}

	var out recommendationsEnvelope
	if err := c.call(ctx, http.MethodGet, "/recommendations", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

// SkillBasedRecommendations fetches courses that teach the target skills
// the learner lacks.
func (c *Client) SkillBasedRecommendations(ctx context.Context, req SkillRecommendationRequest) ([]CourseRecommendation, error) {
	if req.CurrentSkills == nil {
		req.CurrentSkills = map[string]float64{}
	}
	if req.TargetSkills == nil {
		req.TargetSkills = []string{}
	}
	var out recommendationsEnvelope
	if err := c.call(ctx, http.MethodPost, "/recommendations/skill-based", nil, req, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

// GenerateLearningPath asks the backend to build a path toward a goal.
// A nil CurrentSkills is sent as an empty object.
func (c *Client) GenerateLearningPath(ctx context.Context, req LearningPathRequest) (*LearningPath, error) {
	if req.CurrentSkills == nil {
		req.CurrentSkills = map[string]float64{}
	}
	var out LearningPath
	if err := c.call(ctx, http.MethodPost, "/learning-path", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLearningPath reports progress on a path and returns it with
// recomputed milestone statuses.
func (c *Client) UpdateLearningPath(ctx context.Context, u LearningPathUpdate) (*LearningPath, error) {
	if u.CompletedModules == nil {
		u.CompletedModules = []string{}
	}
	if u.ProgressData == nil {
		u.ProgressData = map[string]float64{}
	}
	var out LearningPath
	if err := c.call(ctx, http.MethodPut, "/learning-path", nil, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LearningPathStatus fetches the progress summary of a path.
func (c *Client) LearningPathStatus(ctx context.Context, pathID string) (*LearningPathStatus, error) {
	var out LearningPathStatus
	path := "/learning-path/" + url.PathEscape(pathID) + "/status"
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics fetches the predictive analytics snapshot for a learner.
func (c *Client) Analytics(ctx context.Context, userID string) (*PredictiveAnalytics, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	var out PredictiveAnalytics
	if err := c.call(ctx, http.MethodGet, "/analytics", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a smart search. A nil UserContext is sent as an empty object.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	if req.UserContext == nil {
		req.UserContext = map[string]string{}
	}
	var out searchEnvelope
	if err := c.call(ctx, http.MethodPost, "/search", nil, req, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// SearchSuggestions returns query completions for a partial query.
func (c *Client) SearchSuggestions(ctx context.Context, query string, limit int) ([]string, error) {
	var out suggestionsEnvelope
	body := suggestionsRequest{Query: query, Limit: limit}
	if err := c.call(ctx, http.MethodPost, "/search/suggestions", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// AskTutor sends a question with the prior conversation and returns the reply.
func (c *Client) AskTutor(ctx context.Context, req TutorRequest) (*TutorResponse, error) {
	if req.ConversationHistory == nil {
		req.ConversationHistory = []Message{}
	}
	var out TutorResponse
	if err := c.call(ctx, http.MethodPost, "/tutor", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssessSkills submits graded results and returns the resulting assessment.
func (c *Client) AssessSkills(ctx context.Context, req AssessmentRequest) (*SkillAssessment, error) {
	if req.AssessmentResults == nil {
		req.AssessmentResults = []AssessmentResult{}
	}
	var out SkillAssessment
	if err := c.call(ctx, http.MethodPost, "/skills/assess", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SkillGapAnalysis compares the learner's skills with a target role.
func (c *Client) SkillGapAnalysis(ctx context.Context, userID, targetRole string) (*SkillGapAnalysis, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("target_role", targetRole)
	var out SkillGapAnalysis
	if err := c.call(ctx, http.MethodGet, "/skills/gap-analysis", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SummarizeContent returns a summary of lesson content.
func (c *Client) SummarizeContent(ctx context.Context, req SummaryRequest) (string, error) {
	var out summaryEnvelope
	if err := c.call(ctx, http.MethodPost, "/content/summarize", nil, req, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// ExtractConcepts returns the key concepts found in lesson content.
func (c *Client) ExtractConcepts(ctx context.Context, req ConceptsRequest) ([]KeyConcept, error) {
	var out conceptsEnvelope
	if err := c.call(ctx, http.MethodPost, "/content/concepts", nil, req, &out); err != nil {
		return nil, err
	}
	return out.Concepts, nil
}

// GenerateQuiz returns multiple-choice questions about lesson content.
func (c *Client) GenerateQuiz(ctx context.Context, req QuizRequest) ([]QuizQuestion, error) {
	var out quizEnvelope
	if err := c.call(ctx, http.MethodPost, "/content/quiz", nil, req, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// RecordInteraction reports a learner's reaction to a recommendation.
func (c *Client) RecordInteraction(ctx context.Context, in Interaction) error {
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}
	return c.call(ctx, http.MethodPost, "/recommendations/interact", nil, in, nil)
}

// RecordEngagement reports an engagement metric used by analytics.
func (c *Client) RecordEngagement(ctx context.Context, m EngagementMetric) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return c.call(ctx, http.MethodPost, "/analytics/engagement", nil, m, nil)
}

// Health checks that the backend is up and speaks a compatible API major
// version.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/healthz", nil, &out); err != nil {
		return nil, err
	}
	if !Compatible(out.APIVersion) {
		return &out, fmt.Errorf("%w: server %q, client %q", ErrIncompatibleServer, out.APIVersion, APIVersion)
	}
	return &out, nil
}

// Compatible reports whether a server API version shares this client's
// major version.
func Compatible(serverVersion string) bool {
	v := serverVersion
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return false
	}
	return semver.Major(v) == semver.Major(APIVersion)
}

func (c *Client) call(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + apiPrefix + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return c.do(ctx, method, u, body, out)
}

func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("url", u), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("non-success status",
			zap.String("method", method),
			zap.String("url", u),
			zap.Int("status", resp.StatusCode),
		)
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
			RetryAfter: parseRetryAfter(resp.Header),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
