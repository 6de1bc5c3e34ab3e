package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/model"
	"github.com/theirongolddev/meetcost/internal/pipeline"
	"github.com/theirongolddev/meetcost/internal/tui/components"
	"github.com/theirongolddev/meetcost/internal/tui/theme"
)

type editMode int

const (
	editNone editMode = iota
	editHourly
	editYearly
	editName
)

// rosterState tracks the Attendees tab: selection and the cell being edited.
type rosterState struct {
	cursor int
	mode   editMode
	editID string
	input  textinput.Model
	err    error
}

func (r rosterState) editing() bool { return r.mode != editNone }

// attendeesOverhead is the card chrome plus header and footer lines around
// the attendee rows.
const attendeesOverhead = 8

func (a *App) moveRosterCursor(delta int) {
	n := len(a.session.Attendees())
	a.roster.cursor += delta
	if a.roster.cursor >= n {
		a.roster.cursor = n - 1
	}
	if a.roster.cursor < 0 {
		a.roster.cursor = 0
	}
}

func (a App) selectedAttendee() (model.Attendee, bool) {
	list := a.session.Attendees()
	if a.roster.cursor < 0 || a.roster.cursor >= len(list) {
		return model.Attendee{}, false
	}
	return list[a.roster.cursor], true
}

// updateAttendeesKey handles keys specific to the Attendees tab. ok is false
// when the key should fall through to the global bindings.
func (a App) updateAttendeesKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.moveRosterCursor(1)
		return a, nil, true
	case "k", "up":
		a.moveRosterCursor(-1)
		return a, nil, true
	case "g", "home":
		a.roster.cursor = 0
		return a, nil, true
	case "G", "end":
		a.roster.cursor = 0
		a.moveRosterCursor(len(a.session.Attendees()))
		return a, nil, true
	case "enter", "e":
		m, cmd := a.rosterStartEdit(editHourly)
		return m, cmd, true
	case "y":
		m, cmd := a.rosterStartEdit(editYearly)
		return m, cmd, true
	case "n":
		m, cmd := a.rosterStartEdit(editName)
		return m, cmd, true
	case "d", "x", "delete":
		att, ok := a.selectedAttendee()
		if !ok {
			return a, nil, true
		}
		if err := a.session.RemoveAttendee(att.ID); err != nil {
			a.roster.err = err
			return a, nil, true
		}
		a.notice = "removed " + displayName(att.Name)
		a.moveRosterCursor(0)
		return a, nil, true
	}
	return a, nil, false
}

func (a App) rosterStartEdit(mode editMode) (tea.Model, tea.Cmd) {
	att, ok := a.selectedAttendee()
	if !ok {
		return a, nil
	}

	ti := textinput.New()
	ti.CharLimit = 40
	ti.Width = 16

	switch mode {
	case editHourly:
		ti.Placeholder = "per hour"
		ti.SetValue(att.Rate.String())
	case editYearly:
		ti.Placeholder = "per year"
		if y, ok, err := a.session.Yearly(att.ID); err == nil && ok {
			ti.SetValue(strconv.FormatInt(y, 10))
		}
	case editName:
		ti.Placeholder = "name"
		ti.SetValue(att.Name)
	}
	ti.CursorEnd()
	ti.Focus()

	a.roster.mode = mode
	a.roster.editID = att.ID
	a.roster.input = ti
	a.roster.err = nil
	return a, ti.Cursor.BlinkCmd()
}

// updateRosterInput applies every keystroke to the session as it is typed.
// Leaving the field commits an hourly rate, the way losing focus does.
func (a App) updateRosterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := a.roster.editID

	switch msg.String() {
	case "enter", "esc", "tab":
		if a.roster.mode == editHourly {
			if err := a.session.CommitRate(id); err != nil {
				a.roster.err = err
			}
		}
		a.roster.mode = editNone
		a.roster.editID = ""
		return a, nil
	}

	var cmd tea.Cmd
	a.roster.input, cmd = a.roster.input.Update(msg)
	value := a.roster.input.Value()

	var err error
	switch a.roster.mode {
	case editHourly:
		err = a.session.SetHourlyInput(id, value)
		if err == nil {
			// Show what was kept after sanitizing.
			if att, aerr := a.session.Attendee(id); aerr == nil && att.Rate.Text() != value {
				a.roster.input.SetValue(att.Rate.Text())
				a.roster.input.CursorEnd()
			}
		}
	case editYearly:
		_, err = a.session.SetYearlyInput(id, value)
	case editName:
		err = a.session.RenameAttendee(id, value)
	}
	a.roster.err = err
	return a, cmd
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed)"
	}
	return name
}

func (a App) renderAttendeesTab(cw, h int) string {
	t := theme.Active
	list := a.session.Attendees()
	sym := a.cfg.General.CurrencySymbol
	total := pipeline.AggregateRate(list)
	elapsed := a.session.Elapsed()
	inner := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	nameW := inner - 2 - 14 - 16 - 9 - 14
	if nameW < 12 {
		nameW = 12
	}
	row := func(name, hourly, yearly, share, cost string) string {
		return fmt.Sprintf("%-*s%14s%16s%9s%14s", nameW, truncStr(name, nameW-1), hourly, yearly, share, cost)
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render("  " + row("Name", "Hourly", "Yearly", "Share", "So far")))
	body.WriteString("\n")

	if len(list) == 0 {
		body.WriteString(dimStyle.Render("  Nobody in this meeting. Press a to add someone."))
		body.WriteString("\n")
	}

	visible := h - attendeesOverhead
	if visible < 1 {
		visible = 1
	}
	offset := 0
	if a.roster.cursor >= visible {
		offset = a.roster.cursor - visible + 1
	}

	for i := offset; i < len(list) && i < offset+visible; i++ {
		att := list[i]
		rate := att.Rate.Effective()

		hourly := cli.FormatRate(rate, sym)
		if !att.Rate.IsParsed() {
			hourly = att.Rate.Text() + " …"
		}
		yearly := "-"
		if y, ok := pipeline.YearlyFor(att.Rate, a.session.AnnualHours()); ok {
			yearly = cli.FormatCurrency(float64(y), sym)
			yearly = strings.TrimSuffix(yearly, ".00")
		}
		share := "-"
		if total > 0 {
			share = cli.FormatPercent(rate / total * 100)
		}
		cost := a.money(float64(elapsed) * rate / 3600)

		editingRow := a.roster.editing() && att.ID == a.roster.editID
		if editingRow {
			label := map[editMode]string{editHourly: "hourly", editYearly: "yearly", editName: "name"}[a.roster.mode]
			body.WriteString(markerStyle.Render("▸ "))
			body.WriteString(selectedStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(displayName(att.Name), nameW-1))))
			body.WriteString(mutedStyle.Render(" " + label + ": "))
			body.WriteString(a.roster.input.View())
			body.WriteString("\n")
			continue
		}

		line := row(displayName(att.Name), hourly, yearly, share, cost)
		if i == a.roster.cursor {
			body.WriteString(markerStyle.Render("▸ "))
			body.WriteString(selectedStyle.Render(line))
			if pad := inner - 2 - lipgloss.Width(line); pad > 0 {
				body.WriteString(selectedStyle.Render(strings.Repeat(" ", pad)))
			}
		} else {
			body.WriteString(rowStyle.Render("  " + line))
		}
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(fmt.Sprintf("%d attendees · %s · %s per minute",
		len(list), cli.FormatRate(total, sym), a.money(total/60))))
	body.WriteString("\n")

	switch {
	case a.roster.err != nil:
		body.WriteString(warnStyle.Render(a.roster.err.Error()))
	case a.roster.editing():
		body.WriteString(dimStyle.Render("typing updates the cost live  [Enter/Esc] done"))
	default:
		body.WriteString(dimStyle.Render("[a] add  [Enter/e] hourly  [y] yearly  [n] rename  [d] remove  [j/k] move"))
	}

	return components.ContentCard("Attendees", body.String(), cw)
}
