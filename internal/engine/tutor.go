package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/llm"
)

// Intent is what a tutor question is asking for.
type Intent string

const (
	IntentConcept         Intent = "concept_explanation"
	IntentCode            Intent = "code_help"
	IntentTroubleshooting Intent = "troubleshooting"
	IntentProgress        Intent = "progress_check"
	IntentBrainAI         Intent = "brain_ai_specific"
	IntentGeneral         Intent = "general"
)

// intentPatterns is ordered: ties go to the earlier intent.
var intentPatterns = []struct {
	intent   Intent
	patterns []string
}{
	{IntentConcept, []string{"what is", "explain", "how does", "what does", "define", "concept", "theory", "principle", "mechanism"}},
	{IntentCode, []string{"how to", "code", "implement", "example", "syntax", "error", "debug", "run", "execute"}},
	{IntentTroubleshooting, []string{"error", "problem", "issue", "wrong", "doesn't work", "failed", "stuck", "help"}},
	{IntentProgress, []string{"progress", "completed", "finished", "next step", "what should i do", "how to continue"}},
	{IntentBrainAI, []string{"brain ai", "memory system", "learning engine", "reasoning", "neural", "intelligence"}},
}

// ClassifyIntent scores the question against each intent's phrase list and
// returns the best match, or IntentGeneral when nothing matches.
func ClassifyIntent(question string) Intent {
	q := strings.ToLower(question)
	best, bestScore := IntentGeneral, 0
	for _, ip := range intentPatterns {
		score := 0
		for _, p := range ip.patterns {
			if strings.Contains(q, p) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = ip.intent, score
		}
	}
	return best
}

type tutorOutput struct {
	Response        string   `json:"response"`
	SuggestedTopics []string `json:"suggested_topics"`
}

// Tutor answers a learner question in the context of the prior
// conversation. With a provider the model answers; otherwise the reply is
// built from the question's intent and the catalog knowledge base.
func (e *Engine) Tutor(ctx context.Context, req brainapi.TutorRequest) (*brainapi.TutorResponse, error) {
	if req.UserID == "" {
		return nil, invalid("user_id is required")
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, invalid("question is required")
	}

	if e.provider != nil {
		resp, err := e.askModel(ctx, req, question)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("tutor generation failed, using rule-based reply", zap.Error(err))
	}

	intent := ClassifyIntent(question)
	e.logger.Debug("tutor intent", zap.String("user_id", req.UserID), zap.String("intent", string(intent)))

	concept := e.matchConcept(question)
	var text string
	switch intent {
	case IntentConcept:
		text = e.explainConcept(concept)
	case IntentCode:
		text = codeReply(concept)
	case IntentTroubleshooting:
		text = troubleshootingReply
	case IntentProgress:
		text = e.progressReply(req.UserID)
	case IntentBrainAI:
		text = brainAIReply
	default:
		text = generalReply
	}
	if req.CurrentContent != "" {
		text += fmt.Sprintf("\n\nYou are currently studying: %s.", req.CurrentContent)
	}

	return &brainapi.TutorResponse{
		Response:        text,
		SuggestedTopics: e.suggestTopics(ctx, question, concept),
	}, nil
}

func (e *Engine) askModel(ctx context.Context, req brainapi.TutorRequest, question string) (*brainapi.TutorResponse, error) {
	resp, err := e.provider.Generate(ctx, llm.Request{
		Purpose:     llm.PurposeTutor,
		Learner:     req.UserID,
		System:      e.buildTutorSystem(req.CurrentContent),
		Messages:    buildTutorMessages(req.ConversationHistory, question),
		Schema:      TutorSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("tutor generation: %w", err)
	}

	var out tutorOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse tutor response: %w", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return nil, fmt.Errorf("tutor response is empty")
	}
	if len(out.SuggestedTopics) > 3 {
		out.SuggestedTopics = out.SuggestedTopics[:3]
	}
	return &brainapi.TutorResponse{Response: out.Response, SuggestedTopics: out.SuggestedTopics}, nil
}

// matchConcept returns the knowledge base concept whose keywords appear most
// often in the question, or nil.
func (e *Engine) matchConcept(question string) *Concept {
	words := tokenSet(question)
	var best *Concept
	bestHits := 0
	for i := range e.catalog.Concepts {
		c := &e.catalog.Concepts[i]
		hits := 0
		for _, k := range c.Keywords {
			if words[k] {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = c, hits
		}
	}
	return best
}

func (e *Engine) explainConcept(c *Concept) string {
	if c == nil {
		return "I can explain that step by step. Tell me which part you want to focus on, how familiar you are with it already, and whether a worked example would help."
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.Definition))
	b.WriteString("\n\nKey points:\n")
	for _, p := range c.KeyPoints {
		b.WriteString("- " + p + "\n")
	}
	b.WriteString("\nRelated topics: " + strings.Join(c.RelatedTopics, ", "))
	return b.String()
}

func codeReply(c *Concept) string {
	topic := "your Brain AI code"
	if c != nil {
		topic = c.Name
	}
	return fmt.Sprintf("Let's work through %s together. Share the snippet you are working on and what you expect it to do. "+
		"Start small: build the component in the interactive lab, run it on a handful of inputs, then change one parameter at a time to see its effect.", topic)
}

const troubleshootingReply = `Let's troubleshoot it step by step:

1. Check that dependencies are installed and up to date.
2. Confirm the framework imports and prints its version.
3. Look for memory pressure: reduce the batch size if the process is killed.
4. Re-run with the smallest input that still fails.

Share the exact error message and the code that triggers it and I can narrow it down.`

const brainAIReply = `Brain AI is a brain-inspired framework built from four parts:

- Memory systems: persistent, associative storage
- Learning engines: incremental learning without forgetting
- Reasoning engines: multi-step, explainable inference
- Integration tools: adapters for existing systems

Which component would you like to explore?`

const generalReply = `I'm here to help with your Brain AI studies. I can explain concepts, walk through code, help debug problems and suggest what to study next. What would you like to explore?`

func (e *Engine) progressReply(userID string) string {
	var enrolled []string
	var skills map[string]float64
	e.withLearner(userID, func(l *learner) {
		for id := range l.enrolled {
			enrolled = append(enrolled, id)
		}
		skills = maps.Clone(l.skills)
	})
	slices.Sort(enrolled)
	if len(enrolled) == 0 {
		return "You are not enrolled in any course yet. " + e.firstStep()
	}

	for _, id := range enrolled {
		c, ok := e.catalog.Course(id)
		if !ok {
			continue
		}
		for _, m := range c.Modules {
			if skills[m.Skill] < StrengthThreshold {
				return fmt.Sprintf("You are working through %s. Your next step is %s.", c.Title, m.Title)
			}
		}
	}
	return "You have covered every module in your enrolled courses. Ask for recommendations to pick your next course."
}

func (e *Engine) firstStep() string {
	if len(e.catalog.Courses) == 0 || len(e.catalog.Courses[0].Modules) == 0 {
		return ""
	}
	c := e.catalog.Courses[0]
	return fmt.Sprintf("A good place to start is %s in %s.", c.Modules[0].Title, c.Title)
}

func (e *Engine) suggestTopics(ctx context.Context, question string, c *Concept) []string {
	if c != nil && len(c.RelatedTopics) > 0 {
		return slices.Clone(c.RelatedTopics[:min(3, len(c.RelatedTopics))])
	}
	results, err := e.Search(ctx, brainapi.SearchRequest{Query: question})
	if err != nil {
		return nil
	}
	var topics []string
	for _, r := range results {
		if r.Type == brainapi.ResultModule {
			topics = append(topics, r.Title)
			if len(topics) == 3 {
				break
			}
		}
	}
	return topics
}
