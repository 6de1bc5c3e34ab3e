package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/meeting"
	"github.com/theirongolddev/meetcost/internal/model"
	"github.com/theirongolddev/meetcost/internal/pipeline"
	"github.com/theirongolddev/meetcost/internal/tui/components"
	"github.com/theirongolddev/meetcost/internal/tui/theme"
)

// targetState tracks typing a target duration on the Meeting tab.
type targetState struct {
	editing bool
	input   textinput.Model
	err     error
}

func (a App) targetStartEdit() (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.Placeholder = "minutes, blank for none"
	ti.CharLimit = 4
	ti.Width = 24
	if d := a.session.Target(); d.Set {
		ti.SetValue(strconv.Itoa(d.Minutes))
		ti.CursorEnd()
	}
	ti.Focus()

	a.activeTab = tabMeeting
	a.target = targetState{editing: true, input: ti}
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateTargetInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		d, err := model.ParseTarget(a.target.input.Value())
		if err != nil {
			a.target.err = err
			return a, nil
		}
		a.session.SetTarget(d)
		a.target = targetState{}
		return a, nil
	case "esc":
		a.target = targetState{}
		return a, nil
	}

	var cmd tea.Cmd
	a.target.input, cmd = a.target.input.Update(msg)
	a.target.err = nil
	return a, cmd
}

func (a App) renderMeetingTab(cw int) string {
	t := theme.Active
	snap := a.session.Snapshot()
	p := snap.Projection
	sym := a.cfg.General.CurrencySymbol
	tier := snap.Tier.String()

	projected := "no target"
	projectedNote := "press + or t"
	if snap.Target.Set {
		projected = a.money(p.ProjectedCost)
		projectedNote = cli.FormatMinutes(snap.Target.Minutes) + " target"
	}

	state := "paused"
	if snap.State == meeting.Running {
		state = "running"
	} else if snap.Elapsed == 0 {
		state = "not started"
	}

	metrics := []components.Metric{
		{Label: "Elapsed", Value: cli.FormatElapsed(snap.Elapsed), Delta: state},
		{Label: "Cost so far", Value: a.money(p.CurrentCost), Delta: tier + " tier", Color: t.ForTier(tier)},
		{Label: "Burning", Value: a.money(p.PerMinute) + "/min", Delta: cli.FormatRate(p.HourlyRate, sym)},
		{Label: "Projected", Value: projected, Delta: projectedNote},
	}

	var b strings.Builder
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:2], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[2:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		b.WriteString(a.renderTargetCard(snap, cw))
		b.WriteString("\n")
		b.WriteString(a.renderRealityCard(snap, cw))
		b.WriteString("\n")
		b.WriteString(a.renderSharesCard(snap, cw))
		return b.String()
	}

	b.WriteString(components.CardRow([]string{
		a.renderTargetCard(snap, halves[0]),
		a.renderRealityCard(snap, halves[1]),
	}))
	b.WriteString("\n")
	b.WriteString(components.CardRow([]string{
		a.renderSharesCard(snap, halves[0]),
		a.renderTrailCard(tier, halves[1]),
	}))
	return b.String()
}

func (a App) renderTargetCard(snap meeting.Snapshot, w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)
	p := snap.Projection

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	var body strings.Builder
	switch {
	case a.target.editing:
		body.WriteString(labelStyle.Render("Target: "))
		body.WriteString(a.target.input.View())
		body.WriteString("\n")
		if a.target.err != nil {
			body.WriteString(warnStyle.Render(a.target.err.Error()))
		} else {
			body.WriteString(dimStyle.Render("[Enter] set  [Esc] cancel"))
		}

	case !snap.Target.Set:
		body.WriteString(labelStyle.Render("No target set"))
		body.WriteString("\n")
		body.WriteString(dimStyle.Render("[+/-] adjust  [t] type"))

	default:
		body.WriteString(labelStyle.Render("Target "))
		body.WriteString(valueStyle.Render(cli.FormatMinutes(snap.Target.Minutes)))
		body.WriteString(labelStyle.Render("  vs projected "))
		body.WriteString(valueStyle.Render(cli.FormatDelta(p.CurrentCost, p.ProjectedCost, a.cfg.General.CurrencySymbol)))
		body.WriteString("\n")
		barW := inner - 5
		body.WriteString(components.TargetBar(p.ProgressPercent, barW))
		body.WriteString("\n")
		body.WriteString(dimStyle.Render("[+/-] adjust  [t] type"))
	}

	return components.ContentCard("Target", body.String(), w)
}

func (a App) renderRealityCard(snap meeting.Snapshot, w int) string {
	t := theme.Active
	cost := snap.Projection.CurrentCost

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headlineStyle := lipgloss.NewStyle().Foreground(t.ForTier(snap.Tier.String())).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var body strings.Builder
	if snap.RealityCheck != nil {
		body.WriteString(labelStyle.Render("So far this meeting could have bought"))
		body.WriteString("\n")
		body.WriteString(headlineStyle.Render(snap.RealityCheck.Label))
	} else {
		body.WriteString(labelStyle.Render("Not worth anything yet"))
		body.WriteString("\n")
		body.WriteString(dimStyle.Render(" "))
	}
	body.WriteString("\n")

	if next, ok := nextRealityCheck(a.session.RealityChecks(), cost); ok {
		body.WriteString(dimStyle.Render(fmt.Sprintf("Next: %s at %s", next.Label, a.money(next.Threshold))))
	} else {
		body.WriteString(dimStyle.Render("Past the last milestone"))
	}

	return components.ContentCard("Reality check", body.String(), w)
}

// nextRealityCheck returns the first milestone above cost.
func nextRealityCheck(table []pipeline.RealityCheck, cost float64) (pipeline.RealityCheck, bool) {
	for _, rc := range table {
		if rc.Threshold > cost {
			return rc, true
		}
	}
	return pipeline.RealityCheck{}, false
}

func (a App) renderSharesCard(snap meeting.Snapshot, w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	if len(snap.Shares) == 0 {
		dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		return components.ContentCard("Who costs what", dim.Render("Nobody here. Press a to add an attendee."), w)
	}

	const labelW = 16
	const valueW = 12
	barW := inner - labelW - valueW - 2
	if barW < 4 {
		barW = 4
	}

	lines := make([]string, 0, len(snap.Shares))
	for _, s := range snap.Shares {
		name := s.Name
		if name == "" {
			name = "(unnamed)"
		}
		lines = append(lines, components.ShareBar(name, a.money(s.Cost), s.SharePercent, labelW, barW))
	}
	return components.ContentCard("Who costs what", strings.Join(lines, "\n"), w)
}

func (a App) renderTrailCard(tier string, w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.costTrail) == 0 {
		return components.ContentCard("Cost over time", dim.Render("Start the timer to watch it climb."), w)
	}

	trail := components.Tail(a.costTrail, inner)
	body := components.Sparkline(trail, t.ForTier(tier)) + "\n" +
		dim.Render(fmt.Sprintf("last %s", cli.FormatDuration(int64(len(trail)))))
	return components.ContentCard("Cost over time", body, w)
}
