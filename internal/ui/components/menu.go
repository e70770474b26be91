package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/brainkit/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Key, when set, activates the item
// directly from anywhere in the menu.
type MenuItem struct {
	Label       string
	Description string
	Key         string
	Action      func() tea.Cmd
	Disabled    bool
}

// Menu is a vertical list with a cursor that skips disabled items and
// wraps at both ends.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a menu with the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	return m
}

// move steps the cursor by dir, skipping disabled items.
func (m *Menu) move(dir int) {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((m.Selected+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

// Update handles navigation, enter and item shortcuts.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		m.move(-1)
		return m, nil
	case "down", "j":
		m.move(1)
		return m, nil
	case "enter":
		return m, m.activate(m.Selected)
	}
	for i, item := range m.Items {
		if item.Key != "" && item.Key == key && !item.Disabled {
			m.Selected = i
			return m, m.activate(i)
		}
	}
	return m, nil
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

// View renders the menu.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		key := "   "
		if item.Key != "" {
			key = "[" + item.Key + "]"
		}
		var line string
		switch {
		case item.Disabled:
			line = lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + key + " " + item.Label)
		case i == m.Selected:
			line = theme.Selected.Render("▸ " + key + " " + item.Label)
		default:
			line = theme.Unselected.Render("  " + key + " " + item.Label)
		}
		if item.Description != "" {
			line += "  " + theme.Hint.Render(item.Description)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
