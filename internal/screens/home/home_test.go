package home

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/brainkit/internal/router"
	"github.com/abhisek/brainkit/internal/screen"
	"github.com/abhisek/brainkit/internal/screen/screentest"
	"github.com/abhisek/brainkit/internal/screens/dashboard"
	"github.com/abhisek/brainkit/internal/screens/path"
	"github.com/abhisek/brainkit/internal/screens/placeholder"
	"github.com/abhisek/brainkit/internal/screens/search"
	"github.com/abhisek/brainkit/internal/screens/tutor"
)

// pick moves the cursor down n times and presses enter.
func pick(t *testing.T, h *HomeScreen, n int) tea.Msg {
	t.Helper()
	for i := 0; i < n; i++ {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from the menu")
	}
	return cmd()
}

func pushed(t *testing.T, msg tea.Msg) screen.Screen {
	t.Helper()
	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msg)
	}
	if c, ok := push.Screen.(screen.Closer); ok {
		t.Cleanup(c.Close)
	}
	return push.Screen
}

func TestMenuOpensScreens(t *testing.T) {
	env := screentest.Env(screentest.New(), "learner-1")

	tests := []struct {
		name  string
		index int
		check func(screen.Screen) bool
	}{
		{"dashboard", 0, func(s screen.Screen) bool { _, ok := s.(*dashboard.DashboardScreen); return ok }},
		{"search", 1, func(s screen.Screen) bool { _, ok := s.(*search.SearchScreen); return ok }},
		{"tutor", 2, func(s screen.Screen) bool { _, ok := s.(*tutor.TutorScreen); return ok }},
		{"path", 3, func(s screen.Screen) bool { _, ok := s.(*path.PathScreen); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pushed(t, pick(t, New(env), tt.index))
			if !tt.check(s) {
				t.Errorf("unexpected screen %T", s)
			}
		})
	}
}

func TestMenuWithoutBackend(t *testing.T) {
	s := pushed(t, pick(t, New(screen.Env{UserID: "learner-1"}), 0))
	if _, ok := s.(*placeholder.PlaceholderScreen); !ok {
		t.Fatalf("expected placeholder, got %T", s)
	}
	if s.Title() != "Dashboard" {
		t.Errorf("expected placeholder titled Dashboard, got %q", s.Title())
	}
}

func TestMenuWithoutLearner(t *testing.T) {
	s := pushed(t, pick(t, New(screentest.Env(screentest.New(), "")), 2))
	if _, ok := s.(*placeholder.PlaceholderScreen); !ok {
		t.Fatalf("expected placeholder, got %T", s)
	}
}

func TestMenuQuit(t *testing.T) {
	msg := pick(t, New(screen.Env{}), 4)
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("expected QuitMsg, got %T", msg)
	}
}

func TestMenuShortcutOpensTutor(t *testing.T) {
	h := New(screentest.Env(screentest.New(), "learner-1"))
	_, cmd := h.Update(tea.KeyPressMsg{Code: 't', Text: "t"})
	if cmd == nil {
		t.Fatal("expected a command from the shortcut")
	}
	if _, ok := pushed(t, cmd()).(*tutor.TutorScreen); !ok {
		t.Error("expected the tutor screen")
	}
}
