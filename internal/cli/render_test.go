package cli

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Attendees",
		Headers: []string{"Name", "Rate"},
		Rows: [][]string{
			{"Manager", "$80.00"},
			{"---"},
			{"Total", "$80.00"},
		},
	})
	for _, want := range []string{"Attendees", "Name", "Manager", "Total", "┼"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table should render nothing")
	}
}

func TestRenderProgressBar(t *testing.T) {
	out := RenderProgressBar(150, 10)
	if !strings.Contains(out, strings.Repeat("█", 10)) || !strings.Contains(out, "100.0%") {
		t.Fatalf("capped bar = %q", out)
	}
	if RenderProgressBar(50, 0) != "" {
		t.Fatal("zero width should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{0, 5, 10}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Fatalf("sparkline = %q", string(got))
	}
}

func TestTierColor(t *testing.T) {
	if TierColor("low") != ColorGreen || TierColor("critical") != ColorRed {
		t.Fatal("tier colors")
	}
}
