package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/brainkit/internal/router"
	"github.com/abhisek/brainkit/internal/screen"
	"github.com/abhisek/brainkit/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 3000 * time.Millisecond
)

const brainArt = `    ╭──────┬──────╮
   ╭┤ ∿∿∿  │  ∿∿∿ ├╮
   │╰─┬──╮ │ ╭──┬─╯│
   │  ● ─┼─┼─┼─ ●  │
   ╰──┬──╯ │ ╰──┬──╯
      ╰────┴────╯`

// pulse frames cycle beside the brain
var pulseFrames = []string{"·", "•", "●", "•"}

type tickMsg time.Time

// WelcomeScreen plays a short splash and then hands over to the home
// screen. Any key skips ahead.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced by homeFactory.
func New(homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		w.elapsed += tickInterval
		w.tickCount++
		if w.elapsed >= totalDur {
			return w, w.transition()
		}
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	rendered := lipgloss.NewStyle().Foreground(theme.Primary).Render(brainArt)

	if w.elapsed >= phase1End {
		pulse := pulseFrames[w.tickCount%len(pulseFrames)]
		left := lipgloss.NewStyle().Foreground(theme.Accent).Render(pulse)
		right := lipgloss.NewStyle().Foreground(theme.Secondary).Render(pulse)

		lines := strings.Split(rendered, "\n")
		if len(lines) > 3 {
			lines[3] = left + "  " + lines[3] + "  " + right
		}
		rendered = strings.Join(lines, "\n")
	}
	sections = append(sections, rendered)

	if w.elapsed >= phase2End {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Learning, tuned to you."),
		)
	}
	sections = append(sections, "", theme.Hint.Render("press any key to skip"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
