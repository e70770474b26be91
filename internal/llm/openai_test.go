package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_StructuredReply(t *testing.T) {
	var body struct {
		User     string `json:"user"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string `json:"name"`
				Strict bool   `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"title":"Vectors","minutes":30}`, "stop"))
	})

	resp, err := p.Generate(context.Background(), Request{
		Purpose: PurposeLearningPath,
		Learner: "learner-7",
		System:  "You plan learning paths.",
		Messages: []Message{
			{Role: RoleUser, Content: "Goal: vector search"},
			{Role: RoleAssistant, Content: ""},
		},
		Schema:    testSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.Total() != 65 || resp.StopReason != "end" || resp.Model != "gpt-4o-mini-2024-07-18" {
		t.Errorf("resp = %+v", resp)
	}
	if body.User != "learner-7" {
		t.Errorf("user = %q", body.User)
	}
	if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", body.Messages)
	}
	if body.ResponseFormat.Type != "json_schema" || body.ResponseFormat.JSONSchema.Name != "test-object" || !body.ResponseFormat.JSONSchema.Strict {
		t.Errorf("response_format = %+v", body.ResponseFormat)
	}
}

func TestOpenAIProvider_InvalidStructuredReply(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"title":"Vectors"}`, "stop"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
		Schema:   testSchema(),
	})
	if !IsKind(err, KindInvalidOutput) {
		t.Fatalf("got %v, want invalid output", err)
	}
}

func TestOpenAIProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindUnavailable},
		{http.StatusBadRequest, KindRejected},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "error", "message": "nope"},
				})
			})
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			if !IsKind(err, tt.want) {
				t.Fatalf("got %v, want %s", err, tt.want)
			}
		})
	}
}

func TestNewOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "openrouter" || p.ModelID() != "anthropic/claude-3-haiku" {
		t.Errorf("name = %q model = %q", p.Name(), p.ModelID())
	}
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"}); err == nil {
		t.Error("expected error for empty API key")
	}
}
