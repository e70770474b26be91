package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMessages(t *testing.T) {
	tests := []struct {
		name string
		in   []Message
		want []Message
	}{
		{
			name: "alternating history kept",
			in: []Message{
				{RoleUser, "What is an embedding?"},
				{RoleAssistant, "A vector."},
				{RoleUser, "Why?"},
			},
			want: []Message{
				{RoleUser, "What is an embedding?"},
				{RoleAssistant, "A vector."},
				{RoleUser, "Why?"},
			},
		},
		{
			name: "leading greeting dropped",
			in: []Message{
				{RoleAssistant, "Hi, I'm your tutor."},
				{RoleUser, "Explain recall."},
			},
			want: []Message{{RoleUser, "Explain recall."}},
		},
		{
			name: "repeated user turns merged",
			in: []Message{
				{RoleUser, "First question"},
				{RoleUser, "  and a follow-up "},
			},
			want: []Message{{RoleUser, "First question\n\nand a follow-up"}},
		},
		{
			name: "blank turns removed before merging",
			in: []Message{
				{RoleUser, "Q1"},
				{RoleAssistant, "   "},
				{RoleUser, "Q2"},
			},
			want: []Message{{RoleUser, "Q1\n\nQ2"}},
		},
		{
			name: "unknown role treated as user",
			in:   []Message{{Role("system"), "hello"}},
			want: []Message{{RoleUser, "hello"}},
		},
		{
			name: "empty",
			in:   nil,
			want: []Message{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMessages(tt.in))
		})
	}
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gpt-4.1", resolveModel("gpt-4.1", openaiModels))
}
