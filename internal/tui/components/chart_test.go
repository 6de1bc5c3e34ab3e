package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/meetcost/internal/tui/theme"
)

func TestSparklineScalesToPeak(t *testing.T) {
	out := Sparkline([]float64{0, 5, 10}, theme.Active.Accent)
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Fatalf("sparkline = %q", out)
	}
	if lipgloss.Width(out) != 3 {
		t.Fatalf("width = %d, want 3", lipgloss.Width(out))
	}
	if Sparkline(nil, theme.Active.Accent) != "" {
		t.Fatal("empty input should render nothing")
	}
}

func TestTail(t *testing.T) {
	v := []float64{1, 2, 3, 4}
	if got := Tail(v, 2); len(got) != 2 || got[0] != 3 {
		t.Fatalf("Tail = %v", got)
	}
	if got := Tail(v, 10); len(got) != 4 {
		t.Fatalf("Tail = %v", got)
	}
}

func TestColorForPct(t *testing.T) {
	th := theme.Active
	if ColorForPct(10) != th.Green || ColorForPct(60) != th.Yellow ||
		ColorForPct(85) != th.Orange || ColorForPct(100) != th.Red {
		t.Fatal("unexpected color bands")
	}
}

func TestTargetBarWidth(t *testing.T) {
	bar := TargetBar(150, 20)
	// 20 cells of bar, a space, and "100%".
	if w := lipgloss.Width(bar); w != 25 {
		t.Fatalf("width = %d, want 25", w)
	}
	if !strings.Contains(bar, "100%") {
		t.Fatalf("bar not clamped: %q", bar)
	}
}
