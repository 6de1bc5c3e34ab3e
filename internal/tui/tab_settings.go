package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/config"
	"github.com/theirongolddev/meetcost/internal/tui/components"
	"github.com/theirongolddev/meetcost/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldAnnualHours
	settingsFieldDefaultRate
	settingsFieldCurrency
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldAnnualHours:
		ti.Placeholder = "2000"
		ti.SetValue(formatFloat(a.session.AnnualHours()))
	case settingsFieldDefaultRate:
		ti.Placeholder = "50"
		ti.SetValue(formatFloat(a.session.DefaultRate()))
	case settingsFieldCurrency:
		ti.Placeholder = "$"
		ti.SetValue(a.cfg.General.CurrencySymbol)
	}
	ti.CursorEnd()
	ti.Focus()

	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited field, applies it to the running
// session, and writes the config file.
func (a *App) settingsSave() {
	val := strings.TrimSpace(a.settings.input.Value())
	cfg := a.cfg

	switch a.settings.cursor {
	case settingsFieldTheme:
		if !theme.Known(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Appearance.Theme = val
	case settingsFieldAnnualHours:
		hours, err := strconv.ParseFloat(val, 64)
		if err != nil || hours <= 0 {
			a.settings.saveErr = fmt.Errorf("annual hours must be a positive number, got %q", val)
			return
		}
		cfg.General.AnnualHours = hours
	case settingsFieldDefaultRate:
		rate, err := strconv.ParseFloat(val, 64)
		if err != nil || rate <= 0 {
			a.settings.saveErr = fmt.Errorf("default rate must be a positive number, got %q", val)
			return
		}
		cfg.General.DefaultRate = rate
	case settingsFieldCurrency:
		if val == "" {
			a.settings.saveErr = fmt.Errorf("currency symbol cannot be empty")
			return
		}
		cfg.General.CurrencySymbol = val
	}

	a.applyConfig(cfg)
	a.settings.saveErr = a.saveConfig(cfg)
}

// applyConfig makes cfg live for this run.
func (a *App) applyConfig(cfg config.Config) {
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.session.SetAnnualHours(cfg.AnnualHours())
	a.session.SetDefaultRate(cfg.General.DefaultRate)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	fields := []struct {
		label string
		value string
	}{
		{"Theme", a.cfg.Appearance.Theme},
		{"Annual hours", formatFloat(a.session.AnnualHours())},
		{"Default rate", cli.FormatRate(a.session.DefaultRate(), a.cfg.General.CurrencySymbol)},
		{"Currency symbol", a.cfg.General.CurrencySymbol},
	}

	innerW := components.CardInnerWidth(cw)

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := innerW - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	// Reality-check milestones and role presets
	var infoBody strings.Builder
	sym := a.cfg.General.CurrencySymbol
	for _, rc := range a.session.RealityChecks() {
		infoBody.WriteString(labelStyle.Render(fmt.Sprintf("%12s  ", cli.FormatCurrency(rc.Threshold, sym))))
		infoBody.WriteString(valueStyle.Render(rc.Label))
		infoBody.WriteString("\n")
	}
	infoBody.WriteString("\n")
	infoBody.WriteString(labelStyle.Render("Role presets:    ") + valueStyle.Render(cli.FormatNumber(int64(len(a.cfg.Presets())))) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Reality checks", infoBody.String(), cw))
	return b.String()
}
