package path

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/brainkit/internal/router"
	"github.com/abhisek/brainkit/internal/screen/screentest"
	"github.com/abhisek/brainkit/internal/screens/tutor"
)

func typeGoal(p *PathScreen, goal string) {
	for _, r := range goal {
		p.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
}

func TestPathGeneratesOnEnter(t *testing.T) {
	api := screentest.New()
	p := New(screentest.Env(api, "learner-1"), "", map[string]float64{"vectors": 0.8})
	t.Cleanup(p.Close)

	if api.Calls("GenerateLearningPath") != 0 {
		t.Fatal("no path should be generated without a goal")
	}
	if !strings.Contains(p.View(100, 40), "Describe a goal") {
		t.Error("expected the empty-state hint")
	}

	typeGoal(p, "memory store")
	p.hook.Wait()

	if len(api.PathRequests) != 1 {
		t.Fatalf("expected one request, got %d", len(api.PathRequests))
	}
	req := api.PathRequests[0]
	if req.TargetGoal != "memory store" || req.UserID != "learner-1" || req.CurrentSkills["vectors"] != 0.8 {
		t.Errorf("unexpected request %+v", req)
	}

	view := p.View(100, 40)
	for _, want := range []string{"memory store", "Estimated 4 weeks", "Indexing", "Retrieval", "1/3"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPathInitialGoal(t *testing.T) {
	api := screentest.New()
	p := New(screentest.Env(api, "learner-1"), "  agents  ", nil)
	t.Cleanup(p.Close)
	p.hook.Wait()

	if len(api.PathRequests) != 1 || api.PathRequests[0].TargetGoal != "agents" {
		t.Errorf("expected an immediate request for the trimmed goal, got %+v", api.PathRequests)
	}

	// A blank submit regenerates the current goal.
	p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	p.hook.Wait()
	if api.Calls("GenerateLearningPath") != 2 {
		t.Errorf("expected a regeneration, got %d calls", api.Calls("GenerateLearningPath"))
	}
}

func TestPathBlankGoalNotice(t *testing.T) {
	p := New(screentest.Env(screentest.New(), "learner-1"), "", nil)
	t.Cleanup(p.Close)

	p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if p.notice == "" {
		t.Error("expected a notice for a blank goal")
	}
}

func TestPathOpensTutorOnCurrentMilestone(t *testing.T) {
	api := screentest.New()
	p := New(screentest.Env(api, "learner-1"), "memory store", nil)
	t.Cleanup(p.Close)

	ctrlT := tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl}
	p.hook.Wait()

	_, cmd := p.Update(ctrlT)
	if cmd == nil {
		t.Fatal("expected a command to open the tutor")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	ts, ok := push.Screen.(*tutor.TutorScreen)
	if !ok {
		t.Fatalf("expected a tutor screen, got %T", push.Screen)
	}
	defer ts.Close()

	if !strings.Contains(ts.View(100, 30), "Studying: Indexing: Build an ANN index") {
		t.Error("tutor should be focused on the in-progress milestone")
	}
}

func TestPathCompletesCurrentMilestone(t *testing.T) {
	api := screentest.New()
	p := New(screentest.Env(api, "learner-1"), "memory store", nil)
	t.Cleanup(p.Close)
	p.hook.Wait()

	ctrlD := tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl}
	p.Update(ctrlD)
	p.hook.Wait()

	if len(api.PathUpdates) != 1 {
		t.Fatalf("expected one update, got %d", len(api.PathUpdates))
	}
	u := api.PathUpdates[0]
	if u.PathID != "path-1" || len(u.CompletedModules) != 1 || u.CompletedModules[0] != "m2" {
		t.Errorf("unexpected update %+v", u)
	}
	if !strings.Contains(p.View(100, 40), "2/3") {
		t.Error("expected the meter to advance")
	}

	p.Update(ctrlD)
	p.hook.Wait()
	p.Update(ctrlD)
	if p.notice == "" {
		t.Error("expected a notice once every milestone is complete")
	}
	if api.Calls("UpdateLearningPath") != 2 {
		t.Errorf("expected two updates, got %d", api.Calls("UpdateLearningPath"))
	}
}
