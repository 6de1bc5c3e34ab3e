package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/tui/components"
	"github.com/theirongolddev/meetcost/internal/tui/theme"
)

// historyOverhead covers the summary cards, card borders and header rows.
const historyOverhead = 12

func (a App) renderHistoryTab(cw, h int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	switch {
	case a.history == nil:
		return components.ContentCard("History", dim.Render("No state database, so nothing is recorded."), cw)
	case a.historyErr != nil:
		return components.ContentCard("History", warn.Render("Could not read history: "+a.historyErr.Error()), cw)
	case len(a.meetings) == 0:
		return components.ContentCard("History",
			dim.Render("No meetings recorded yet. Reset a meeting with r (or quit) to record it."), cw)
	}

	var totalCost float64
	var totalSecs int64
	costs := make([]float64, len(a.meetings))
	for i, m := range a.meetings {
		totalCost += m.TotalCost
		totalSecs += m.ElapsedSecs
		// Oldest first for the sparkline.
		costs[len(a.meetings)-1-i] = m.TotalCost
	}
	n := len(a.meetings)

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Meetings", Value: cli.FormatNumber(int64(n))},
		{Label: "Total cost", Value: a.money(totalCost)},
		{Label: "Time spent", Value: cli.FormatDuration(totalSecs)},
		{Label: "Average", Value: a.money(totalCost / float64(n)), Delta: cli.FormatDuration(totalSecs/int64(n)) + " each"},
	}, cw))
	b.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	row := func(ended, dur, people, rate, cost, target string) string {
		return fmt.Sprintf("%-18s%10s%8s%14s%14s%10s", ended, dur, people, rate, cost, target)
	}

	var body strings.Builder
	inner := components.CardInnerWidth(cw)
	body.WriteString(components.Sparkline(components.Tail(costs, inner), t.Accent))
	body.WriteString("\n\n")
	body.WriteString(headerStyle.Render(row("Ended", "Length", "People", "Rate", "Cost", "Target")))
	body.WriteString("\n")

	visible := h - historyOverhead
	if visible < 1 {
		visible = 1
	}
	sym := a.cfg.General.CurrencySymbol
	for i, m := range a.meetings {
		if i >= visible {
			body.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more (meetcost history)", n-visible)))
			break
		}
		line := row(
			m.EndedAt.Local().Format("2006-01-02 15:04"),
			cli.FormatElapsed(m.ElapsedSecs),
			fmt.Sprintf("%d", m.Attendees),
			cli.FormatRate(m.HourlyRate, sym),
			a.money(m.TotalCost),
			cli.FormatMinutes(m.TargetMinutes),
		)
		body.WriteString(rowStyle.Render(line))
		body.WriteString("\n")
	}

	b.WriteString(components.ContentCard("Recent meetings", strings.TrimRight(body.String(), "\n"), cw))
	return b.String()
}
