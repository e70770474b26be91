package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/brainkit/internal/router"
	"github.com/abhisek/brainkit/internal/screen/screentest"
	"github.com/abhisek/brainkit/internal/screens/home"
	"github.com/abhisek/brainkit/internal/screens/welcome"
)

func TestInitialScreen(t *testing.T) {
	env := screentest.Env(screentest.New(), "learner-1")

	if _, ok := newAppModel(env, true).router.Active().(*welcome.WelcomeScreen); !ok {
		t.Error("splash should start on the welcome screen")
	}
	if _, ok := newAppModel(env, false).router.Active().(*home.HomeScreen); !ok {
		t.Error("without splash the app should start on home")
	}
}

func TestEscPopsOnlyAboveRoot(t *testing.T) {
	m := newAppModel(screentest.Env(screentest.New(), "learner-1"), false)
	defer m.router.CloseAll()

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("esc on the root screen should do nothing")
	}

	// Open the dashboard from the home menu.
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m.Update(cmd())
	if m.router.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", m.router.Depth())
	}
	if hints := m.footerHints(m.router.Active()); len(hints) == 0 || hints[0].Description != "Select" {
		t.Errorf("expected the dashboard's key hints, got %+v", hints)
	}

	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatal("esc should pop the screen")
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newAppModel(screentest.Env(screentest.New(), "learner-1"), false)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}
