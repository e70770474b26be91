package placeholder

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/brainkit/internal/screen"
	"github.com/abhisek/brainkit/internal/ui/theme"
)

// PlaceholderScreen stands in for a feature that cannot run, such as a
// screen whose backend is not configured.
type PlaceholderScreen struct {
	title  string
	reason string
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

// New creates a PlaceholderScreen that explains why the feature is missing.
func New(title, reason string) *PlaceholderScreen {
	return &PlaceholderScreen{title: title, reason: reason}
}

func (p *PlaceholderScreen) Init() tea.Cmd {
	return nil
}

func (p *PlaceholderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return p, nil
}

func (p *PlaceholderScreen) View(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render("╌╌ Unavailable ╌╌\n\n" + p.reason)
}

func (p *PlaceholderScreen) Title() string {
	return p.title
}
