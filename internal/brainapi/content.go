package brainapi

// Content types accepted by the content endpoints.
const (
	ContentText     = "text"
	ContentVideo    = "video"
	ContentDocument = "document"
)

// SummaryRequest asks for a summary of lesson content.
type SummaryRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	MaxLength   int    `json:"max_length"`
}

type summaryEnvelope struct {
	Summary string `json:"summary"`
}

// ConceptsRequest asks for the key concepts in lesson content.
type ConceptsRequest struct {
	Content     string `json:"content"`
	NumConcepts int    `json:"num_concepts"`
}

// KeyConcept is a term found in content with a short definition.
type KeyConcept struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type conceptsEnvelope struct {
	Concepts []KeyConcept `json:"concepts"`
}

// QuizRequest asks for quiz questions generated from lesson content.
type QuizRequest struct {
	Content      string `json:"content"`
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty"`
}

// QuizQuestion is a multiple-choice question. Answer indexes Options.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
	Difficulty  string   `json:"difficulty"`
}

type quizEnvelope struct {
	Questions []QuizQuestion `json:"questions"`
}
