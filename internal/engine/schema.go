package engine

import "github.com/abhisek/brainkit/internal/llm"

// PathSchema defines the JSON schema for LLM learning path generation.
var PathSchema = &llm.Schema{
	Name:        "learning-path",
	Description: "An ordered learning path of catalog modules toward a goal",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"milestones": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"module_id": map[string]any{
							"type":        "string",
							"description": "The catalog module id this milestone covers",
						},
						"title": map[string]any{
							"type":        "string",
							"description": "Short milestone title",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "One sentence on why this step matters for the goal",
						},
					},
					"required":             []any{"module_id", "title", "description"},
					"additionalProperties": false,
				},
				"minItems":    1,
				"description": "Milestones in the order the learner should take them",
			},
			"skill_gaps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Skills the learner still needs for the goal",
			},
		},
		"required":             []any{"milestones", "skill_gaps"},
		"additionalProperties": false,
	},
}

// TutorSchema defines the JSON schema for LLM tutor replies.
var TutorSchema = &llm.Schema{
	Name:        "tutor-reply",
	Description: "A tutor reply with follow-up topics",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response": map[string]any{
				"type":        "string",
				"description": "The answer to the learner's question in plain text or markdown",
			},
			"suggested_topics": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"maxItems":    3,
				"description": "Up to three catalog module titles worth studying next",
			},
		},
		"required":             []any{"response", "suggested_topics"},
		"additionalProperties": false,
	},
}
