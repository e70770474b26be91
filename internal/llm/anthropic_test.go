package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(
		AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func anthropicReply(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicProvider_SendsNormalizedConversation(t *testing.T) {
	var body struct {
		System   []map[string]any `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		Metadata map[string]any `json:"metadata"`
	}
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicReply(`{"response":"Replay consolidates memories.","suggested_topics":[]}`, "end_turn"))
	})

	_, err := p.Generate(context.Background(), Request{
		Purpose: PurposeTutor,
		Learner: "learner-7",
		System:  "You are the Brain AI tutor.",
		Messages: []Message{
			{Role: RoleAssistant, Content: "Hi! Ask me anything."},
			{Role: RoleUser, Content: "What is memory replay?"},
		},
		Schema:    testSchema(),
		MaxTokens: 256,
	})
	if err == nil {
		t.Fatal("expected schema mismatch: reply lacks title and minutes")
	}
	if !IsKind(err, KindInvalidOutput) {
		t.Fatalf("got %v, want invalid output", err)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
		t.Errorf("messages sent = %+v, want the greeting dropped", body.Messages)
	}
	if body.Metadata["user_id"] != "learner-7" {
		t.Errorf("metadata = %v", body.Metadata)
	}
	if len(body.System) != 1 {
		t.Errorf("system = %v", body.System)
	}
}

func TestAnthropicProvider_TextReply(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicReply("Spaced repetition strengthens recall.", "end_turn"))
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Explain spaced repetition."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != "Spaced repetition strengthens recall." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.OutputTokens != 30 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.Model != "claude-haiku-4-5-20251001" || resp.StopReason != "end" {
		t.Errorf("model = %q stop = %q", resp.Model, resp.StopReason)
	}
}

func TestAnthropicProvider_TruncatedPath(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicReply(`{"milestones":[{"module_id":`, "max_tokens"))
	})

	_, err := p.Generate(context.Background(), Request{
		Purpose:   PurposeLearningPath,
		Messages:  []Message{{Role: RoleUser, Content: "Goal: build a retrieval system"}},
		Schema:    testSchema(),
		MaxTokens: 16,
	})
	if !IsKind(err, KindTruncated) {
		t.Fatalf("got %v, want truncated", err)
	}
}

func TestAnthropicProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		want       Kind
		wantWait   time.Duration
	}{
		{"rate limit", http.StatusTooManyRequests, "7", KindRateLimited, 7 * time.Second},
		{"overloaded", http.StatusInternalServerError, "", KindUnavailable, 0},
		{"bad key", http.StatusUnauthorized, "", KindRejected, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": "api_error", "message": "nope"},
				})
			})

			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("got %T (%v), want *Error", err, err)
			}
			if e.Kind != tt.want || e.Provider != "anthropic" {
				t.Errorf("kind = %s provider = %q, want %s", e.Kind, e.Provider, tt.want)
			}
			if e.RetryAfter != tt.wantWait {
				t.Errorf("retry after = %s, want %s", e.RetryAfter, tt.wantWait)
			}
		})
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
