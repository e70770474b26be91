// Package dashboard shows the learner's recommended courses next to their
// predictive analytics.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/query"
	"github.com/abhisek/brainkit/internal/screen"
	"github.com/abhisek/brainkit/internal/ui/components"
	"github.com/abhisek/brainkit/internal/ui/layout"
	"github.com/abhisek/brainkit/internal/ui/theme"
)

const (
	recommendationLimit = 5

	sourceRecommendations = "recommendations"
	sourceAnalytics       = "analytics"
)

// interactionMsg reports the outcome of recording an interaction.
type interactionMsg struct {
	courseName string
	kind       brainapi.InteractionType
	err        error
}

// DashboardScreen lists recommendations and analytics for one learner.
type DashboardScreen struct {
	ctx      context.Context
	recs     *query.Recommendations
	stats    *query.Analytics
	recsW    *screen.Watcher
	statsW   *screen.Watcher
	selected int
	notice   string
	failed   bool
}

var (
	_ screen.Screen          = (*DashboardScreen)(nil)
	_ screen.KeyHintProvider = (*DashboardScreen)(nil)
	_ screen.Closer          = (*DashboardScreen)(nil)
)

// New creates the dashboard. Both hooks start fetching immediately.
func New(env screen.Env) *DashboardScreen {
	ctx := env.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	opts := env.HookOptions()
	recs := query.NewRecommendations(env.API, query.RecommendationParams{
		UserID: env.UserID,
		Limit:  recommendationLimit,
	}, opts...)
	stats := query.NewAnalytics(env.API, query.AnalyticsParams{UserID: env.UserID}, opts...)

	return &DashboardScreen{
		ctx:    ctx,
		recs:   recs,
		stats:  stats,
		recsW:  screen.Watch(sourceRecommendations, recs.Subscribe),
		statsW: screen.Watch(sourceAnalytics, stats.Subscribe),
	}
}

func (d *DashboardScreen) Title() string {
	return "Dashboard"
}

func (d *DashboardScreen) Init() tea.Cmd {
	return tea.Batch(d.recsW.Next(), d.statsW.Next())
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ChangedMsg:
		switch msg.Source {
		case sourceRecommendations:
			d.clampSelection()
			return d, d.recsW.Next()
		case sourceAnalytics:
			return d, d.statsW.Next()
		}

	case interactionMsg:
		if msg.err != nil {
			d.failed = true
			d.notice = fmt.Sprintf("Could not record %s: %v", msg.kind, msg.err)
			return d, nil
		}
		d.failed = false
		d.notice = fmt.Sprintf("%s %s.", capitalize(string(msg.kind)), msg.courseName)
		d.recs.Refresh()
		d.stats.Refresh()
		return d, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if d.selected > 0 {
				d.selected--
			}
		case "down", "j":
			if d.selected < len(d.recs.State().Data)-1 {
				d.selected++
			}
		case "r":
			d.notice = ""
			d.recs.Refresh()
			d.stats.Refresh()
		case "enter", "e":
			return d, d.interact(brainapi.InteractionEnrolled)
		case "v":
			return d, d.interact(brainapi.InteractionViewed)
		case "x":
			return d, d.interact(brainapi.InteractionDismissed)
		}
	}
	return d, nil
}

func (d *DashboardScreen) interact(kind brainapi.InteractionType) tea.Cmd {
	recs := d.recs.State().Data
	if d.selected < 0 || d.selected >= len(recs) {
		return nil
	}
	rec := recs[d.selected]
	hook, ctx := d.recs, d.ctx
	return func() tea.Msg {
		err := hook.RecordInteraction(ctx, rec.CourseID, kind)
		return interactionMsg{courseName: rec.CourseName, kind: kind, err: err}
	}
}

func (d *DashboardScreen) clampSelection() {
	n := len(d.recs.State().Data)
	if d.selected >= n {
		d.selected = n - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}
}

func (d *DashboardScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)

	var cards []string
	if layout.IsCompactWidth(width) {
		cards = append(cards,
			d.renderRecommendations(cw),
			d.renderAnalytics(cw),
		)
	} else {
		left := cw * 3 / 5
		right := cw - left - 1
		cards = append(cards, lipgloss.JoinHorizontal(lipgloss.Top,
			d.renderRecommendations(left),
			" ",
			d.renderAnalytics(right),
		))
	}

	if d.notice != "" {
		style := theme.Completed
		if d.failed {
			style = theme.ErrorText
		}
		cards = append(cards, style.Render(d.notice))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, strings.Join(cards, "\n"))
}

func (d *DashboardScreen) renderRecommendations(width int) string {
	st := d.recs.State()
	inner := width - 4

	var b strings.Builder
	b.WriteString(theme.Title.Render("Recommended for you") + "\n\n")

	switch {
	case st.Loading && len(st.Data) == 0:
		b.WriteString(theme.Hint.Render("Loading recommendations…"))
	case st.Err != nil && len(st.Data) == 0:
		b.WriteString(theme.ErrorText.Render(st.ErrorMessage()))
	case len(st.Data) == 0:
		b.WriteString(theme.Hint.Render("No recommendations yet."))
	default:
		for i, rec := range st.Data {
			marker, nameStyle := "  ", theme.Unselected
			if i == d.selected {
				marker, nameStyle = "▸ ", theme.Selected
			}
			match := lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("%3d%%", rec.MatchPercentage))
			name := layout.Truncate(rec.CourseName, inner-8)
			b.WriteString(nameStyle.Render(marker+name) + " " + match + "\n")
			if rec.Reason != "" {
				b.WriteString("  " + theme.Hint.Render(layout.Truncate(rec.Reason, inner-2)) + "\n")
			}
		}
		if st.Err != nil {
			b.WriteString(theme.ErrorText.Render(st.ErrorMessage()))
		}
	}

	return cardStyle(st.Loading).Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (d *DashboardScreen) renderAnalytics(width int) string {
	st := d.stats.State()
	inner := width - 4

	var b strings.Builder
	b.WriteString(theme.Title.Render("Your progress") + "\n\n")

	if st.Data == nil {
		switch {
		case st.Err != nil:
			b.WriteString(theme.ErrorText.Render(st.ErrorMessage()))
		default:
			b.WriteString(theme.Hint.Render("Loading analytics…"))
		}
		return cardStyle(st.Loading).Width(width).Render(b.String())
	}

	a := st.Data
	b.WriteString(components.NewMeter("Completion", a.CompletionProbability, inner).View() + "\n")
	b.WriteString(components.NewMeter("Score     ", a.PredictedScore/100, inner).View() + "\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Study %d min/day", a.RecommendedStudyTime)))
	if a.EngagementTrend != "" {
		b.WriteString(theme.Subtitle.Render("  ·  " + trendLabel(a.EngagementTrend)))
	}
	b.WriteString("\n")

	writeList := func(label string, items []string, style lipgloss.Style) {
		if len(items) == 0 {
			return
		}
		b.WriteString("\n" + theme.Subtitle.Render(label) + "\n")
		for _, it := range items {
			b.WriteString(style.Render("  "+layout.Truncate(it, inner-2)) + "\n")
		}
	}
	writeList("Strengths", a.StrengthAreas, theme.Completed)
	writeList("Improve", a.ImprovementAreas, theme.InProgress)
	writeList("At risk", a.AtRiskCourses, theme.ErrorText)

	return cardStyle(st.Loading).Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func cardStyle(loading bool) lipgloss.Style {
	if loading {
		return theme.ActiveCard
	}
	return theme.Card
}

func trendLabel(trend string) string {
	switch trend {
	case "increasing":
		return "engagement ↑"
	case "declining":
		return "engagement ↓"
	default:
		return "engagement →"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "Enter", Description: "Enroll"},
		{Key: "v", Description: "Viewed"},
		{Key: "x", Description: "Dismiss"},
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

// Close stops watching and cancels in-flight requests.
func (d *DashboardScreen) Close() {
	d.recsW.Stop()
	d.statsW.Stop()
	d.recs.Close()
	d.stats.Close()
}
