package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/brainkit/internal/router"
	"github.com/abhisek/brainkit/internal/screen"
	"github.com/abhisek/brainkit/internal/screens/dashboard"
	"github.com/abhisek/brainkit/internal/screens/path"
	"github.com/abhisek/brainkit/internal/screens/placeholder"
	"github.com/abhisek/brainkit/internal/screens/search"
	"github.com/abhisek/brainkit/internal/screens/tutor"
	"github.com/abhisek/brainkit/internal/ui/components"
	"github.com/abhisek/brainkit/internal/ui/layout"
	"github.com/abhisek/brainkit/internal/ui/theme"
)

// HomeScreen is the main menu.
type HomeScreen struct {
	env  screen.Env
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen. Features that need a backend or a learner
// open a placeholder explaining what is missing.
func New(env screen.Env) *HomeScreen {
	h := &HomeScreen{env: env}
	items := []components.MenuItem{
		{Label: "Dashboard", Key: "d", Description: "recommendations and progress", Action: h.open("Dashboard", func() screen.Screen {
			return dashboard.New(env)
		})},
		{Label: "Search", Key: "s", Description: "courses, modules, discussions", Action: h.open("Search", func() screen.Screen {
			return search.New(env, nil)
		})},
		{Label: "AI Tutor", Key: "t", Description: "ask questions as you study", Action: h.open("AI Tutor", func() screen.Screen {
			return tutor.New(env, "")
		})},
		{Label: "Learning Path", Key: "p", Description: "plan the route to a goal", Action: h.open("Learning Path", func() screen.Screen {
			return path.New(env, "", nil)
		})},
		{Label: "Quit", Key: "q", Action: func() tea.Cmd { return tea.Quit }},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) open(title string, build func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		var s screen.Screen
		switch {
		case h.env.API == nil:
			s = placeholder.New(title, "No backend configured.\nSet api.base_url in your config file.")
		case h.env.UserID == "":
			s = placeholder.New(title, "No learner selected.\nSet user_id in your config or pass --user.")
		default:
			s = build()
		}
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: s}
		}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(layout.ContentWidth(width), 60)

	greeting := "Welcome back"
	if h.env.UserID != "" {
		greeting += ", " + h.env.UserID
	}

	sections := []string{
		theme.Title.Render("B R A I N K I T"),
		theme.Subtitle.Render(greeting),
		"",
		theme.Card.Width(cw).Render(strings.TrimRight(h.menu.View(), "\n")),
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}

func (h *HomeScreen) Title() string {
	return "Home"
}
