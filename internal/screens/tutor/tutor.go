// Package tutor is the chat screen for the AI tutor.
package tutor

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/query"
	"github.com/abhisek/brainkit/internal/screen"
	"github.com/abhisek/brainkit/internal/ui/components"
	"github.com/abhisek/brainkit/internal/ui/layout"
	"github.com/abhisek/brainkit/internal/ui/theme"
)

const sourceTutor = "tutor"

type restoredMsg struct {
	err error
}

// TutorScreen shows the conversation and an input line. Replies arrive
// asynchronously and the view follows the hook state.
type TutorScreen struct {
	ctx     context.Context
	hook    *query.Tutor
	watch   *screen.Watcher
	input   components.TextInput
	content string
	notice  string
}

var (
	_ screen.Screen          = (*TutorScreen)(nil)
	_ screen.KeyHintProvider = (*TutorScreen)(nil)
	_ screen.Closer          = (*TutorScreen)(nil)
)

// New creates the tutor screen. content describes what the learner is
// studying and is sent with each question; it may be empty.
func New(env screen.Env, content string) *TutorScreen {
	ctx := env.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	opts := env.HookOptions()
	if env.Transcript != nil {
		opts = append(opts, query.WithTranscript(env.Transcript))
	}
	hook := query.NewTutor(env.API, query.TutorParams{
		UserID:         env.UserID,
		CurrentContent: content,
		MaxHistory:     env.MaxHistory,
	}, opts...)

	return &TutorScreen{
		ctx:     ctx,
		hook:    hook,
		watch:   screen.Watch(sourceTutor, hook.Subscribe),
		input:   components.NewTextInput("Ask the tutor anything…", 2000),
		content: content,
	}
}

func (t *TutorScreen) Title() string {
	return "AI Tutor"
}

func (t *TutorScreen) Init() tea.Cmd {
	hook, ctx := t.hook, t.ctx
	restore := func() tea.Msg {
		return restoredMsg{err: hook.Restore(ctx)}
	}
	return tea.Batch(t.input.Init(), t.watch.Next(), restore)
}

func (t *TutorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ChangedMsg:
		if msg.Source == sourceTutor {
			return t, t.watch.Next()
		}
		return t, nil

	case restoredMsg:
		if msg.err != nil {
			t.notice = "Could not load the previous conversation."
		}
		return t, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			t.notice = ""
			text := t.input.Submitted()
			if err := t.hook.Send(text); err != nil && !errors.Is(err, query.ErrEmptyMessage) {
				t.notice = err.Error()
			}
			return t, nil
		case "ctrl+l":
			t.notice = ""
			t.hook.Clear()
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

func (t *TutorScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	st := t.hook.State()

	var footer []string
	if st.Typing {
		footer = append(footer, theme.Hint.Render("Tutor is typing…"))
	}
	if msg := st.ErrorMessage(); msg != "" {
		footer = append(footer, theme.ErrorText.Render(msg))
	}
	if t.notice != "" {
		footer = append(footer, theme.ErrorText.Render(t.notice))
	}
	if len(st.SuggestedTopics) > 0 {
		footer = append(footer, theme.Subtitle.Render("Explore: ")+
			lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Join(st.SuggestedTopics, " · ")))
	}
	footer = append(footer, theme.Card.Width(cw).Render(t.input.View()))
	bottom := strings.Join(footer, "\n")

	var top []string
	if t.content != "" {
		top = append(top, theme.Subtitle.Render("Studying: "+layout.Truncate(t.content, cw-10)))
	}
	head := strings.Join(top, "\n")

	avail := height - lipgloss.Height(bottom) - 1
	if head != "" {
		avail -= lipgloss.Height(head)
	}
	chat := renderConversation(st.Messages, cw, avail)

	parts := make([]string, 0, 3)
	if head != "" {
		parts = append(parts, head)
	}
	parts = append(parts, chat, bottom)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Bottom, strings.Join(parts, "\n"))
}

// renderConversation renders messages oldest first, keeping only the most
// recent lines that fit in height.
func renderConversation(msgs []brainapi.Message, width, height int) string {
	if len(msgs) == 0 {
		return theme.Hint.Render("Ask a question to start the conversation.")
	}

	body := lipgloss.NewStyle().Foreground(theme.Text).Width(width - 2)
	var lines []string
	for _, m := range msgs {
		label := theme.TutorBubble.Render("Tutor")
		if m.Role == brainapi.RoleUser {
			label = theme.UserBubble.Render("You")
		}
		stamp := theme.Hint.Render(m.Timestamp.Local().Format("15:04"))
		lines = append(lines, label+" "+stamp)
		lines = append(lines, strings.Split(body.Render(m.Content), "\n")...)
		lines = append(lines, "")
	}
	if height > 0 && len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (t *TutorScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+L", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

// Close stops watching and drops outstanding replies.
func (t *TutorScreen) Close() {
	t.watch.Stop()
	t.hook.Close()
}
