package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiSchema_TutorReply(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response": map[string]any{"type": "string", "description": "The answer"},
			"suggested_topics": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"maxItems": 3,
			},
			"level": map[string]any{"type": "string", "enum": []any{"beginner", "advanced"}},
		},
		"required":             []any{"response", "suggested_topics"},
		"additionalProperties": false,
	}

	s := geminiSchema(def)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"response", "suggested_topics"}, s.Required)
	require.Contains(t, s.Properties, "suggested_topics")

	topics := s.Properties["suggested_topics"]
	assert.Equal(t, genai.TypeArray, topics.Type)
	require.NotNil(t, topics.Items)
	assert.Equal(t, genai.TypeString, topics.Items.Type)
	require.NotNil(t, topics.MaxItems)
	assert.EqualValues(t, 3, *topics.MaxItems)
	assert.Nil(t, topics.MinItems)

	assert.Equal(t, "The answer", s.Properties["response"].Description)
	assert.Equal(t, []string{"beginner", "advanced"}, s.Properties["level"].Enum)
}

func TestGeminiContents_Roles(t *testing.T) {
	got := geminiContents([]Message{
		{Role: RoleUser, Content: "What is Hebbian learning?"},
		{Role: RoleAssistant, Content: "Cells that fire together wire together."},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, "model", got[1].Role)
	assert.Equal(t, "Cells that fire together wire together.", got[1].Parts[0].Text)
}
