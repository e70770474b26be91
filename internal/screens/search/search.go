// Package search implements search-as-you-type over the learning catalog.
package search

import (
	"context"
	"fmt"
	"image/color"
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

const (
	suggestionLimit = 5
	sourceSearch    = "search"
)

type suggestionsMsg struct {
	prefix      string
	suggestions []string
	err         error
}

// SearchScreen runs a debounced search on every keystroke. Tab fetches
// completions for the current input and cycles through them.
type SearchScreen struct {
	ctx    context.Context
	hook   *query.Search
	watch  *screen.Watcher
	input  components.TextInput
	last   string
	picked int

	suggestFor  string
	suggestions []string
	suggestErr  error
}

var (
	_ screen.Screen          = (*SearchScreen)(nil)
	_ screen.KeyHintProvider = (*SearchScreen)(nil)
	_ screen.Closer          = (*SearchScreen)(nil)
)

// New creates the search screen. userContext is sent with every query to
// bias the ranking, and may be nil.
func New(env screen.Env, userContext map[string]string) *SearchScreen {
	ctx := env.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	hook := query.NewSearch(env.API, query.SearchParams{
		UserContext: userContext,
		Delay:       env.SearchDelay,
	}, env.HookOptions()...)

	return &SearchScreen{
		ctx:    ctx,
		hook:   hook,
		watch:  screen.Watch(sourceSearch, hook.Subscribe),
		input:  components.NewTextInput("Search courses, modules, discussions…", 200),
		picked: -1,
	}
}

func (s *SearchScreen) Title() string {
	return "Search"
}

func (s *SearchScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.watch.Next())
}

func (s *SearchScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ChangedMsg:
		if msg.Source == sourceSearch {
			return s, s.watch.Next()
		}
		return s, nil

	case suggestionsMsg:
		if msg.prefix != strings.TrimSpace(s.input.Value()) {
			return s, nil
		}
		s.suggestFor = msg.prefix
		s.suggestions = msg.suggestions
		s.suggestErr = msg.err
		s.picked = -1
		return s, nil

	case tea.KeyPressMsg:
		if msg.String() == "tab" {
			return s, s.complete()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if v := s.input.Value(); v != s.last {
		s.last = v
		s.hook.SetQuery(v)
		if strings.TrimSpace(v) != s.suggestFor {
			s.suggestions = nil
			s.suggestErr = nil
			s.suggestFor = ""
		}
	}
	return s, cmd
}

// complete fetches suggestions for the input, or cycles through the ones
// already fetched.
func (s *SearchScreen) complete() tea.Cmd {
	if len(s.suggestions) > 0 {
		s.picked = (s.picked + 1) % len(s.suggestions)
		v := s.suggestions[s.picked]
		s.input.SetValue(v)
		s.last = v
		s.hook.SetQuery(v)
		return nil
	}

	prefix := strings.TrimSpace(s.input.Value())
	if prefix == "" {
		return nil
	}
	hook, ctx := s.hook, s.ctx
	return func() tea.Msg {
		sugg, err := hook.Suggestions(ctx, prefix, suggestionLimit)
		return suggestionsMsg{prefix: prefix, suggestions: sugg, err: err}
	}
}

func (s *SearchScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	inner := cw - 4

	var b strings.Builder
	b.WriteString(theme.Card.Width(cw).Render(s.input.View()) + "\n")

	switch {
	case s.suggestErr != nil:
		b.WriteString(theme.ErrorText.Render("  suggestions unavailable") + "\n")
	case len(s.suggestions) > 0:
		parts := make([]string, len(s.suggestions))
		for i, sg := range s.suggestions {
			style := theme.Subtitle
			if i == s.picked {
				style = theme.Selected
			}
			parts[i] = style.Render(sg)
		}
		b.WriteString("  " + strings.Join(parts, theme.Hint.Render(" · ")) + "\n")
	}
	b.WriteString("\n")

	st := s.hook.State()
	switch {
	case strings.TrimSpace(s.hook.Query()) == "":
		b.WriteString(theme.Hint.Render("  Start typing to search."))
	case st.Loading && len(st.Data) == 0:
		b.WriteString(theme.Hint.Render("  Searching…"))
	case st.Err != nil:
		b.WriteString(theme.ErrorText.Render("  " + st.ErrorMessage()))
	case len(st.Data) == 0:
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  No results for %q.", s.hook.Query())))
	default:
		maxRows := (height - lipgloss.Height(b.String())) / 2
		for i, r := range st.Data {
			if maxRows > 0 && i >= maxRows {
				b.WriteString(theme.Hint.Render(fmt.Sprintf("  … %d more", len(st.Data)-i)))
				break
			}
			b.WriteString(renderResult(r, inner))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, strings.TrimRight(b.String(), "\n"))
}

func renderResult(r brainapi.SearchResult, width int) string {
	kind := lipgloss.NewStyle().Foreground(kindColor(r.Type)).Render(fmt.Sprintf("%-10s", r.Type))
	score := theme.Subtitle.Render(fmt.Sprintf("%3.0f%%", r.RelevanceScore*100))
	title := theme.Body.Bold(true).Render(layout.Truncate(r.Title, width-18))
	line := "  " + kind + " " + title + "  " + score + "\n"
	if r.Snippet != "" {
		line += "             " + theme.Hint.Render(layout.Truncate(r.Snippet, width-14)) + "\n"
	} else {
		line += "\n"
	}
	return line
}

func kindColor(t brainapi.ResultType) color.Color {
	switch t {
	case brainapi.ResultCourse:
		return theme.Primary
	case brainapi.ResultModule:
		return theme.Secondary
	case brainapi.ResultDiscussion:
		return theme.Accent
	default:
		return theme.TextDim
	}
}

func (s *SearchScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Type", Description: "Search"},
		{Key: "Tab", Description: "Suggest"},
		{Key: "Esc", Description: "Back"},
	}
}

// Close stops watching and cancels any pending search.
func (s *SearchScreen) Close() {
	s.watch.Stop()
	s.hook.Close()
}
