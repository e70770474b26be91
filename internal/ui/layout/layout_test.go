package layout

import (
	"strings"
	"testing"
)

func TestRenderFooterDropsOverflow(t *testing.T) {
	hints := []KeyHint{
		{Key: "Enter", Description: "Enroll"},
		{Key: "v", Description: "Mark viewed"},
		{Key: "x", Description: "Dismiss"},
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}

	wide := RenderFooter(hints, 120)
	if !strings.Contains(wide, "Quit") {
		t.Errorf("wide footer should show every hint:\n%s", wide)
	}

	narrow := RenderFooter(hints, 40)
	if strings.Contains(narrow, "Quit") || !strings.Contains(narrow, "…") {
		t.Errorf("narrow footer should drop trailing hints:\n%s", narrow)
	}
}

func TestRenderHeaderShowsLearner(t *testing.T) {
	if h := RenderHeader("Dashboard", "learner-7", 100); !strings.Contains(h, "learner-7") || !strings.Contains(h, "Dashboard") {
		t.Errorf("header = %q", h)
	}
	if h := RenderHeader("Home", "", 100); !strings.Contains(h, "signed out") {
		t.Errorf("header without learner = %q", h)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Vector Memory Systems", 30, "Vector Memory Systems"},
		{"Vector Memory Systems", 10, "Vector Me…"},
		{"héllo wörld", 6, "héllo…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestContentWidthBounds(t *testing.T) {
	for _, tt := range []struct{ in, want int }{{200, 100}, {84, 80}, {10, 20}} {
		if got := ContentWidth(tt.in); got != tt.want {
			t.Errorf("ContentWidth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
