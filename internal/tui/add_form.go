package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/config"
	"github.com/theirongolddev/meetcost/internal/model"
	"github.com/theirongolddev/meetcost/internal/tui/theme"
)

// addValues holds what the add-attendee form collects.
type addValues struct {
	Name string
	Role string
	Rate string
}

const customRole = ""

func newAddForm(cfg config.Config, vals *addValues) *huh.Form {
	sym := cfg.General.CurrencySymbol

	opts := []huh.Option[string]{
		huh.NewOption(fmt.Sprintf("Default (%s)", cli.FormatRate(cfg.General.DefaultRate, sym)), customRole),
	}
	for _, role := range cfg.PresetNames() {
		rate, _ := cfg.LookupPreset(role)
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", config.RoleTitle(role), cli.FormatRate(rate, sym)), role))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Blank uses the role, or \"Attendee N\".").
				Value(&vals.Name),
			huh.NewSelect[string]().
				Title("Role").
				Options(opts...).
				Value(&vals.Role),
			huh.NewInput().
				Title("Hourly rate").
				Description("Overrides the role rate. Leave blank to keep it.").
				Validate(validateHourly).
				Value(&vals.Rate),
		),
	).WithShowHelp(true)
}

func validateHourly(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return errors.New("enter a non-negative number")
	}
	return nil
}

// name resolves the attendee name; empty lets the session number it.
func (v addValues) name() string {
	if n := strings.TrimSpace(v.Name); n != "" {
		return n
	}
	if v.Role != customRole {
		return config.RoleTitle(v.Role)
	}
	return ""
}

// rate resolves the typed rate, then the role preset. Nil means the
// session default.
func (v addValues) rate(cfg config.Config) *model.Rate {
	if s := strings.TrimSpace(v.Rate); s != "" {
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			r := model.Raw(s).Commit()
			return &r
		}
	}
	if v.Role != customRole {
		if f, ok := cfg.LookupPreset(v.Role); ok {
			r := model.Parsed(f)
			return &r
		}
	}
	return nil
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	a.addVals = &addValues{}
	a.addForm = newAddForm(a.cfg, a.addVals)
	if a.width > 0 {
		a.addForm = a.addForm.WithWidth(a.width).WithHeight(a.height)
	}
	return a, a.addForm.Init()
}

func (a App) closeAddForm() App {
	a.addForm = nil
	a.addVals = nil
	return a
}

func (a App) updateAddForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		return a.closeAddForm(), nil
	}

	form, cmd := a.addForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.addForm = f
	}

	switch a.addForm.State {
	case huh.StateCompleted:
		added := a.session.AddAttendee(a.addVals.name(), a.addVals.rate(a.cfg))
		a.notice = "added " + added.Name
		a.activeTab = tabAttendees
		a.roster.cursor = len(a.session.Attendees()) - 1
		return a.closeAddForm(), nil
	case huh.StateAborted:
		return a.closeAddForm(), nil
	}

	return a, cmd
}

func (a App) viewAddForm() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	body := titleStyle.Render("Add attendee") + "\n\n" +
		a.addForm.View() + "\n" +
		dimStyle.Render("[Esc] cancel")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}
