package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-milestone",
		Description: "A single milestone",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":   map[string]any{"type": "string"},
				"minutes": map[string]any{"type": "integer", "minimum": 0},
				"status":  map[string]any{"type": "string", "enum": []any{"completed", "in_progress", "pending"}},
			},
			"required": []any{"title", "minutes"},
		},
	}
}

func TestCheckOutput(t *testing.T) {
	tests := []struct {
		name     string
		schema   *Schema
		content  string
		stop     string
		wantKind Kind
		wantErr  bool
	}{
		{"valid", testSchema(), `{"title":"Vectors","minutes":30,"status":"pending"}`, stopEnd, 0, false},
		{"optional field omitted", testSchema(), `{"title":"Vectors","minutes":30}`, stopEnd, 0, false},
		{"missing required", testSchema(), `{"title":"Vectors"}`, stopEnd, KindInvalidOutput, true},
		{"wrong type", testSchema(), `{"title":"Vectors","minutes":"thirty"}`, stopEnd, KindInvalidOutput, true},
		{"bad enum", testSchema(), `{"title":"Vectors","minutes":30,"status":"done"}`, stopEnd, KindInvalidOutput, true},
		{"below minimum", testSchema(), `{"title":"Vectors","minutes":-1}`, stopEnd, KindInvalidOutput, true},
		{"malformed", testSchema(), `{not json}`, stopEnd, KindInvalidOutput, true},
		{"empty structured", testSchema(), ``, stopEnd, KindInvalidOutput, true},
		{"cut off", testSchema(), `{"title":"Vec`, stopMaxTokens, KindTruncated, true},
		{"text reply", nil, `Embeddings map text to vectors.`, stopEnd, 0, false},
		{"text reply cut off is kept", nil, `Embeddings map text`, stopMaxTokens, 0, false},
		{"blank text reply", nil, "  \n", stopEnd, KindInvalidOutput, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkOutput("test", tt.schema, json.RawMessage(tt.content), tt.stop)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("got %T, want *Error", err)
			}
			if e.Kind != tt.wantKind || e.Provider != "test" {
				t.Errorf("kind = %s provider = %q, want %s", e.Kind, e.Provider, tt.wantKind)
			}
			if tt.schema != nil && string(e.Content) != tt.content {
				t.Errorf("content = %q, want the offending reply", e.Content)
			}
		})
	}
}

func TestCompileSchema_Cached(t *testing.T) {
	s := testSchema()
	first, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if first != second {
		t.Error("expected the compiled schema to be reused")
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	s := &Schema{Name: "broken", Definition: map[string]any{"$ref": "#/definitions/missing"}}
	if _, err := compileSchema(s); err == nil {
		t.Fatal("expected compile error")
	}
}
