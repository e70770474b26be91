// Package path generates and displays a learning path toward a goal.
package path

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/query"
	"github.com/abhisek/brainkit/internal/router"
	"github.com/abhisek/brainkit/internal/screen"
	"github.com/abhisek/brainkit/internal/screens/tutor"
	"github.com/abhisek/brainkit/internal/ui/components"
	"github.com/abhisek/brainkit/internal/ui/layout"
	"github.com/abhisek/brainkit/internal/ui/theme"
)

const sourcePath = "learning-path"

// PathScreen asks for a goal and renders the generated milestones.
type PathScreen struct {
	env    screen.Env
	hook   *query.LearningPath
	watch  *screen.Watcher
	input  components.TextInput
	notice string
}

var (
	_ screen.Screen          = (*PathScreen)(nil)
	_ screen.KeyHintProvider = (*PathScreen)(nil)
	_ screen.Closer          = (*PathScreen)(nil)
)

// New creates the screen. A non-empty goal is generated right away.
func New(env screen.Env, goal string, skills map[string]float64) *PathScreen {
	hook := query.NewLearningPath(env.API, query.LearningPathParams{
		UserID:        env.UserID,
		TargetGoal:    strings.TrimSpace(goal),
		CurrentSkills: skills,
	}, env.HookOptions()...)

	return &PathScreen{
		env:   env,
		hook:  hook,
		watch: screen.Watch(sourcePath, hook.Subscribe),
		input: components.NewTextInput("What do you want to learn?", 200),
	}
}

func (p *PathScreen) Title() string {
	return "Learning Path"
}

func (p *PathScreen) Init() tea.Cmd {
	return tea.Batch(p.input.Init(), p.watch.Next())
}

func (p *PathScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ChangedMsg:
		if msg.Source == sourcePath {
			return p, p.watch.Next()
		}
		return p, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			p.notice = ""
			goal := p.input.Submitted()
			if err := p.hook.GenerateNewPath(goal); err != nil {
				p.notice = "Enter a goal to generate a path."
			}
			return p, nil
		case "ctrl+t":
			return p, p.openTutor()
		case "ctrl+d":
			p.completeCurrent()
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// openTutor pushes a tutor screen focused on the current milestone.
func (p *PathScreen) openTutor() tea.Cmd {
	lp := p.hook.State().Data
	if lp == nil {
		return nil
	}
	content := "Learning path: " + lp.TargetGoal
	if m, ok := currentMilestone(lp.Milestones); ok {
		content = m.Title
		if m.Description != "" {
			content += ": " + m.Description
		}
	}
	t := tutor.New(p.env, content)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: t}
	}
}

// completeCurrent marks the milestone being worked on as done.
func (p *PathScreen) completeCurrent() {
	p.notice = ""
	lp := p.hook.State().Data
	if lp == nil {
		return
	}
	m, ok := currentMilestone(lp.Milestones)
	if !ok {
		p.notice = "Every milestone is complete."
		return
	}
	if err := p.hook.Complete(m.ID); err != nil {
		p.notice = "This path cannot be updated."
	}
}

// currentMilestone returns the first milestone in progress, or failing
// that the first pending one.
func currentMilestone(ms []brainapi.Milestone) (brainapi.Milestone, bool) {
	for _, m := range ms {
		if m.Status == brainapi.MilestoneInProgress {
			return m, true
		}
	}
	for _, m := range ms {
		if m.Status == brainapi.MilestonePending {
			return m, true
		}
	}
	return brainapi.Milestone{}, false
}

func (p *PathScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	inner := cw - 4
	st := p.hook.State()

	sections := []string{theme.Card.Width(cw).Render(p.input.View())}
	if p.notice != "" {
		sections = append(sections, theme.ErrorText.Render(p.notice))
	}

	switch {
	case st.Loading:
		sections = append(sections, theme.Hint.Render("Generating your path…"))
	case st.Err != nil:
		sections = append(sections, theme.ErrorText.Render(st.ErrorMessage()))
	}

	if lp := st.Data; lp != nil {
		sections = append(sections, renderPath(lp, inner, cw))
	} else if !st.Loading && st.Err == nil {
		sections = append(sections, theme.Hint.Render("Describe a goal, e.g. \"build a vector memory store\"."))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, strings.Join(sections, "\n"))
}

func renderPath(lp *brainapi.LearningPath, inner, cw int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(layout.Truncate(lp.TargetGoal, inner)) + "\n")
	if lp.EstimatedDuration != "" {
		b.WriteString(theme.Subtitle.Render("Estimated "+lp.EstimatedDuration) + "\n")
	}

	done := 0
	for _, m := range lp.Milestones {
		if m.Status == brainapi.MilestoneCompleted {
			done++
		}
	}
	if n := len(lp.Milestones); n > 0 {
		b.WriteString(components.NewMeter(fmt.Sprintf("%d/%d", done, n), float64(done)/float64(n), inner).View() + "\n")
	}
	b.WriteString("\n")

	for i, m := range lp.Milestones {
		icon, style := "○", theme.Pending
		switch m.Status {
		case brainapi.MilestoneCompleted:
			icon, style = "✓", theme.Completed
		case brainapi.MilestoneInProgress:
			icon, style = "▸", theme.InProgress
		}
		line := fmt.Sprintf("%s %d. %s", icon, i+1, m.Title)
		if m.EstimatedDuration != "" {
			line += "  " + theme.Hint.Render(m.EstimatedDuration)
		}
		b.WriteString(style.Render(layout.Truncate(line, inner)) + "\n")
	}

	if len(lp.SkillGaps) > 0 {
		b.WriteString("\n" + theme.Subtitle.Render("Skill gaps: ") +
			lipgloss.NewStyle().Foreground(theme.Accent).Render(layout.Truncate(strings.Join(lp.SkillGaps, ", "), inner-12)) + "\n")
	}
	if len(lp.RecommendedResources) > 0 {
		b.WriteString("\n" + theme.Subtitle.Render("Resources") + "\n")
		for _, r := range lp.RecommendedResources {
			b.WriteString("  " + theme.Body.Render(layout.Truncate(r.Title, inner-14)) + " " + theme.Hint.Render(r.Type) + "\n")
		}
	}

	return theme.Card.Width(cw).Render(strings.TrimRight(b.String(), "\n"))
}

func (p *PathScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Generate"},
		{Key: "Ctrl+T", Description: "Ask tutor"},
		{Key: "Ctrl+D", Description: "Milestone done"},
		{Key: "Esc", Description: "Back"},
	}
}

// Close stops watching and cancels generation in flight.
func (p *PathScreen) Close() {
	p.watch.Stop()
	p.hook.Close()
}
