package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

func typeText(t TextInput, s string) TextInput {
	for _, r := range s {
		t, _ = t.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return t
}

func TestTextInputSubmittedTrimsAndClears(t *testing.T) {
	in := typeText(NewTextInput("Ask", 0), "  what is recall?  ")
	if got := in.Submitted(); got != "what is recall?" {
		t.Fatalf("Submitted() = %q", got)
	}
	if in.Value() != "" {
		t.Errorf("value after submit = %q", in.Value())
	}
}

func TestTextInputHistory(t *testing.T) {
	in := NewTextInput("Ask", 0)
	in = typeText(in, "first")
	in.Submitted()
	in = typeText(in, "second")
	in.Submitted()
	in = typeText(in, "second")
	in.Submitted()
	in = typeText(in, "draft")

	up := tea.KeyPressMsg{Code: tea.KeyUp}
	down := tea.KeyPressMsg{Code: tea.KeyDown}

	in, _ = in.Update(up)
	if in.Value() != "second" {
		t.Fatalf("first up = %q, want second", in.Value())
	}
	in, _ = in.Update(up)
	if in.Value() != "first" {
		t.Fatalf("second up = %q, want first (duplicates collapse)", in.Value())
	}
	in, _ = in.Update(up)
	if in.Value() != "first" {
		t.Fatalf("up past the oldest = %q", in.Value())
	}
	in, _ = in.Update(down)
	in, _ = in.Update(down)
	if in.Value() != "draft" {
		t.Fatalf("down back to the draft = %q", in.Value())
	}
}

func TestTextInputBlankNotRecorded(t *testing.T) {
	in := NewTextInput("Ask", 0)
	in = typeText(in, "   ")
	in.Submitted()
	in, _ = in.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if in.Value() != "" {
		t.Errorf("value = %q, want empty", in.Value())
	}
}
