package brainapi

import "time"

// CourseRecommendation is a single course suggested for a learner.
type CourseRecommendation struct {
	ID              string   `json:"id"`
	CourseID        string   `json:"courseId"`
	CourseName      string   `json:"courseName"`
	Reason          string   `json:"reason"`
	Confidence      float64  `json:"confidence"`      // 0.0 - 1.0
	MatchPercentage int      `json:"matchPercentage"` // 0 - 100
	Category        string   `json:"category,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	Rating          float64  `json:"rating,omitempty"`
	SkillsGained    []string `json:"skillsGained,omitempty"`
}

// RecommendationQuery selects recommendations for a learner. Filters are
// passed through as extra query parameters.
type RecommendationQuery struct {
	UserID  string
	Limit   int
	Filters map[string]string
}

// SkillRecommendationRequest asks for courses that close the gap between
// current and target skills.
type SkillRecommendationRequest struct {
	UserID        string             `json:"user_id"`
	CurrentSkills map[string]float64 `json:"current_skills"`
	TargetSkills  []string           `json:"target_skills"`
	Limit         int                `json:"limit,omitempty"`
}

type recommendationsEnvelope struct {
	Recommendations []CourseRecommendation `json:"recommendations"`
}

// MilestoneStatus is the progress state of a learning path milestone.
type MilestoneStatus string

const (
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestonePending    MilestoneStatus = "pending"
)

// Milestone is one ordered step in a learning path.
type Milestone struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description,omitempty"`
	Status            MilestoneStatus `json:"status"`
	EstimatedDuration string          `json:"estimatedDuration,omitempty"`
	CourseID          string          `json:"courseId,omitempty"`
}

// Resource is a recommended learning resource.
type Resource struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
}

// LearningPath is a generated plan toward a target goal. It is regenerated
// wholesale on each request.
type LearningPath struct {
	ID                   string             `json:"id,omitempty"`
	TargetGoal           string             `json:"targetGoal"`
	EstimatedDuration    string             `json:"estimatedDuration"`
	CurrentSkills        map[string]float64 `json:"currentSkills"`
	Milestones           []Milestone        `json:"milestones"`
	SkillGaps            []string           `json:"skillGaps"`
	RecommendedResources []Resource         `json:"recommendedResources"`
}

// LearningPathRequest is the body of a learning path generation call.
type LearningPathRequest struct {
	UserID        string             `json:"user_id"`
	TargetGoal    string             `json:"target_goal"`
	CurrentSkills map[string]float64 `json:"current_skills"`
}

// LearningPathUpdate reports progress on a previously generated path.
// CompletedModules may name milestone ids or catalog module ids.
// ProgressData maps skills to levels in [0,1]; a module whose skill reaches
// the strength threshold counts as completed.
type LearningPathUpdate struct {
	PathID           string             `json:"path_id"`
	CompletedModules []string           `json:"completed_modules"`
	ProgressData     map[string]float64 `json:"progress_data"`
}

// LearningPathStatus summarizes progress along a learning path.
type LearningPathStatus struct {
	PathID             string    `json:"pathId"`
	TargetGoal         string    `json:"targetGoal"`
	TotalMilestones    int       `json:"totalMilestones"`
	CompletedCount     int       `json:"completedMilestones"`
	Progress           float64   `json:"progress"` // 0.0 - 1.0
	CurrentMilestone   string    `json:"currentMilestone,omitempty"`
	EstimatedRemaining string    `json:"estimatedRemaining"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// PredictiveAnalytics is a point-in-time snapshot of a learner's outlook.
type PredictiveAnalytics struct {
	UserID                string    `json:"userId,omitempty"`
	PredictedScore        float64   `json:"predictedScore"`
	RecommendedStudyTime  int       `json:"recommendedStudyTime"` // minutes per day
	AtRiskCourses         []string  `json:"atRiskCourses"`
	StrengthAreas         []string  `json:"strengthAreas"`
	ImprovementAreas      []string  `json:"improvementAreas"`
	CompletionProbability float64   `json:"completionProbability"`
	EngagementTrend       string    `json:"engagementTrend,omitempty"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

// ResultType classifies a search hit.
type ResultType string

const (
	ResultCourse     ResultType = "course"
	ResultModule     ResultType = "module"
	ResultDiscussion ResultType = "discussion"
	ResultOther      ResultType = "other"
)

// SearchResult is a single smart search hit.
type SearchResult struct {
	ID             string     `json:"id"`
	Type           ResultType `json:"type"`
	Title          string     `json:"title"`
	Snippet        string     `json:"snippet,omitempty"`
	RelevanceScore float64    `json:"relevanceScore"`
	CourseID       string     `json:"courseId,omitempty"`
	URL            string     `json:"url,omitempty"`
}

// SearchRequest is the body of a smart search call.
type SearchRequest struct {
	Query       string            `json:"query"`
	UserContext map[string]string `json:"user_context"`
}

type searchEnvelope struct {
	Results []SearchResult `json:"results"`
}

type suggestionsRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type suggestionsEnvelope struct {
	Suggestions []string `json:"suggestions"`
}

// Role is the sender of a tutor conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a tutor conversation.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TutorRequest is the body of a tutor call.
type TutorRequest struct {
	UserID              string    `json:"user_id"`
	ConversationHistory []Message `json:"conversation_history"`
	CurrentContent      string    `json:"current_content"`
	Question            string    `json:"question"`
}

// TutorResponse is the tutor's reply.
type TutorResponse struct {
	Response        string   `json:"response"`
	SuggestedTopics []string `json:"suggestedTopics,omitempty"`
}

// SkillAssessment summarizes a learner's measured proficiency.
type SkillAssessment struct {
	OverallScore    float64            `json:"overallScore"`
	SkillScores     map[string]float64 `json:"skillScores"`
	Recommendations []string           `json:"recommendations"`
	StrengthAreas   []string           `json:"strengthAreas"`
	GrowthAreas     []string           `json:"growthAreas"`
	AssessedAt      time.Time          `json:"assessedAt"`
}

// AssessmentResult is a single graded item fed into a skill assessment.
type AssessmentResult struct {
	Skill    string  `json:"skill"`
	Score    float64 `json:"score"` // 0.0 - 1.0
	MaxScore float64 `json:"max_score,omitempty"`
}

// AssessmentRequest is the body of a skill assessment call.
type AssessmentRequest struct {
	UserID            string             `json:"user_id"`
	AssessmentResults []AssessmentResult `json:"assessment_results"`
}

// SkillGap is one skill a target role needs, with the learner's level.
type SkillGap struct {
	Skill    string  `json:"skill"`
	Current  float64 `json:"current"`
	Required float64 `json:"required"`
	Gap      float64 `json:"gap"`
}

// SkillGapAnalysis compares a learner's skills with those a target role needs.
type SkillGapAnalysis struct {
	UserID             string             `json:"userId"`
	TargetRole         string             `json:"targetRole"`
	CurrentSkills      map[string]float64 `json:"currentSkills"`
	RequiredSkills     []string           `json:"requiredSkills"`
	Gaps               []SkillGap         `json:"gaps"`
	Readiness          float64            `json:"readiness"` // 0.0 - 1.0
	RecommendedCourses []string           `json:"recommendedCourses"`
}

// InteractionType labels how a learner reacted to a recommendation.
type InteractionType string

const (
	InteractionViewed    InteractionType = "viewed"
	InteractionEnrolled  InteractionType = "enrolled"
	InteractionDismissed InteractionType = "dismissed"
)

// Interaction records a learner's reaction to a recommendation.
type Interaction struct {
	UserID          string          `json:"user_id"`
	CourseID        string          `json:"course_id"`
	InteractionType InteractionType `json:"interaction_type"`
	Timestamp       time.Time       `json:"timestamp"`
}

// EngagementMetric is a single engagement signal (minutes studied, quiz
// score, ...).
type EngagementMetric struct {
	UserID     string            `json:"user_id"`
	MetricType string            `json:"metric_type"`
	Value      float64           `json:"value"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// HealthStatus is reported by the backend health endpoint.
type HealthStatus struct {
	Status     string `json:"status"`
	APIVersion string `json:"apiVersion"`
}
