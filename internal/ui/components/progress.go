package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/brainkit/internal/ui/theme"
)

// Meter displays a labelled horizontal bar for a fraction in [0,1]. The fill
// turns amber below Warn and rose below Danger.
type Meter struct {
	Label  string
	Value  float64
	Width  int
	Warn   float64
	Danger float64
}

// NewMeter creates a meter with the default 0.5 / 0.3 bands.
func NewMeter(label string, value float64, width int) Meter {
	return Meter{Label: label, Value: value, Width: width, Warn: 0.5, Danger: 0.3}
}

// View renders the meter.
func (m Meter) View() string {
	var result string
	if m.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(m.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	const percentWidth = 6 // "  100%"
	barWidth := m.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	v := min(max(m.Value, 0), 1)
	filled := int(float64(barWidth) * v)
	fill := theme.Secondary
	switch {
	case v < m.Danger:
		fill = theme.Error
	case v < m.Warn:
		fill = theme.Accent
	}

	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %d%%", int(v*100+0.5)))
	return result
}
