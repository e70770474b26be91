package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

type picked string

func testMenu() Menu {
	action := func(name string) func() tea.Cmd {
		return func() tea.Cmd { return func() tea.Msg { return picked(name) } }
	}
	return NewMenu([]MenuItem{
		{Label: "Offline", Disabled: true, Action: action("offline")},
		{Label: "Dashboard", Key: "d", Action: action("dashboard")},
		{Label: "Search", Key: "s", Action: action("search")},
		{Label: "Tutor", Key: "t", Action: action("tutor"), Disabled: true},
	})
}

func press(m Menu, key tea.KeyPressMsg) (Menu, tea.Msg) {
	m, cmd := m.Update(key)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestMenuStartsOnFirstEnabled(t *testing.T) {
	if got := testMenu().Selected; got != 1 {
		t.Fatalf("selected = %d, want 1", got)
	}
}

func TestMenuWrapsAndSkipsDisabled(t *testing.T) {
	m := testMenu()
	m, _ = press(m, tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 2 {
		t.Fatalf("after down selected = %d, want 2", m.Selected)
	}
	m, _ = press(m, tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 1 {
		t.Fatalf("down past the end should wrap to 1, got %d", m.Selected)
	}
	m, _ = press(m, tea.KeyPressMsg{Code: 'k', Text: "k"})
	if m.Selected != 2 {
		t.Fatalf("up from the top should wrap to 2, got %d", m.Selected)
	}
}

func TestMenuEnterActivatesSelection(t *testing.T) {
	_, msg := press(testMenu(), tea.KeyPressMsg{Code: tea.KeyEnter})
	if msg != picked("dashboard") {
		t.Fatalf("msg = %v, want dashboard", msg)
	}
}

func TestMenuShortcut(t *testing.T) {
	m, msg := press(testMenu(), tea.KeyPressMsg{Code: 's', Text: "s"})
	if msg != picked("search") || m.Selected != 2 {
		t.Fatalf("msg = %v selected = %d", msg, m.Selected)
	}

	m, msg = press(m, tea.KeyPressMsg{Code: 't', Text: "t"})
	if msg != nil || m.Selected != 2 {
		t.Fatalf("disabled shortcut fired: msg = %v selected = %d", msg, m.Selected)
	}
}

func TestMenuAllDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "A", Disabled: true}})
	m, msg := press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if msg != nil || m.Selected != -1 {
		t.Fatalf("msg = %v selected = %d", msg, m.Selected)
	}
}

func TestMenuView(t *testing.T) {
	view := testMenu().View()
	for _, want := range []string{"▸ [d] Dashboard", "[s] Search", "Offline"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
