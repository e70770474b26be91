// Package llm talks to hosted language models on behalf of the reference
// backend. Learning paths and tutor replies are the only two kinds of
// generation, and every request is tagged with which one it is.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a reply for one request.
type Provider interface {
	// Generate sends req to the model. When req.Schema is set the returned
	// Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider family, e.g. "anthropic" or "mock".
	Name() string

	// ModelID is the model requests are sent to.
	ModelID() string
}

// Purpose says what a generation is for. It is recorded with every event.
type Purpose string

const (
	PurposeLearningPath Purpose = "learning-path"
	PurposeTutor        Purpose = "tutor"
)

// Request describes one generation.
type Request struct {
	Purpose Purpose

	// Learner is the LMS user the generation is for. Providers that accept
	// an end-user identifier receive it.
	Learner string

	System string

	// Messages is the conversation so far. Learning path generation sends
	// one user message; the tutor replays the learner's history.
	Messages []Message

	// Schema, when set, asks for JSON output conforming to it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema the model output must satisfy.
type Schema struct {
	// Name is sent to providers that label structured output,
	// e.g. "learning-path".
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a model reply.
type Response struct {
	// Content is the validated JSON object when the request had a schema,
	// the model's text otherwise.
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the request, which may be a
	// dated variant of ModelID.
	Model string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

const (
	stopEnd       = "end"
	stopMaxTokens = "max_tokens"
)
