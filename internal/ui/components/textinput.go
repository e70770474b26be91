package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput is a single-line prompt that remembers what was submitted.
// Up and down walk back through earlier submissions.
type TextInput struct {
	Model textinput.Model

	history []string
	cursor  int    // index into history; len(history) means the draft
	draft   string // what was typed before walking the history
}

// NewTextInput creates a focused text input. A positive limit caps the
// number of characters.
func NewTextInput(placeholder string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.Focus()
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok && len(t.history) > 0 {
		switch k.String() {
		case "up":
			if t.cursor == len(t.history) {
				t.draft = t.Model.Value()
			}
			if t.cursor > 0 {
				t.cursor--
				t.SetValue(t.history[t.cursor])
			}
			return t, nil
		case "down":
			if t.cursor < len(t.history) {
				t.cursor++
				if t.cursor == len(t.history) {
					t.SetValue(t.draft)
				} else {
					t.SetValue(t.history[t.cursor])
				}
			}
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input and moves the cursor to the end.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
	t.Model.CursorEnd()
}

// Submitted returns the trimmed value, records it in the history and
// clears the input. Blank values are not recorded.
func (t *TextInput) Submitted() string {
	v := strings.TrimSpace(t.Model.Value())
	if v != "" && (len(t.history) == 0 || t.history[len(t.history)-1] != v) {
		t.history = append(t.history, v)
	}
	t.cursor = len(t.history)
	t.draft = ""
	t.Model.SetValue("")
	return v
}
