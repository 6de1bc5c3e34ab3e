// Package tui provides the interactive Bubble Tea meeting dashboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/config"
	"github.com/theirongolddev/meetcost/internal/meeting"
	"github.com/theirongolddev/meetcost/internal/model"
	"github.com/theirongolddev/meetcost/internal/tui/components"
	"github.com/theirongolddev/meetcost/internal/tui/theme"
)

// HistoryLister reads recorded meetings, newest first.
type HistoryLister interface {
	ListMeetings(limit int) ([]model.MeetingRecord, error)
}

// Options wires the App to its collaborators.
type Options struct {
	Config     config.Config
	History    HistoryLister
	SaveConfig func(config.Config) error
}

// historyLoadedMsg is sent when recorded meetings have been read.
type historyLoadedMsg struct {
	meetings []model.MeetingRecord
	err      error
}

// App is the root Bubble Tea model.
type App struct {
	session    *meeting.Session
	history    HistoryLister
	cfg        config.Config
	saveConfig func(config.Config) error

	// History tab
	meetings   []model.MeetingRecord
	historyErr error

	// Cost after every applied tick, for the sparkline
	costTrail []float64

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	notice    string

	// Per-tab state
	roster   rosterState
	settings settingsState
	target   targetState

	// Add-attendee form (huh)
	addForm *huh.Form
	addVals *addValues
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160
	minContentHeight = 5

	historyLimit = 100
	maxCostTrail = 600
	targetStep   = 5
)

const (
	tabMeeting = iota
	tabAttendees
	tabHistory
	tabSettings
)

// NewApp creates the root model around a loaded session.
func NewApp(session *meeting.Session, opts Options) App {
	save := opts.SaveConfig
	if save == nil {
		save = config.Save
	}
	cfg := opts.Config
	if cfg.General.CurrencySymbol == "" {
		cfg.General.CurrencySymbol = cli.DefaultCurrency
	}
	return App{
		session:    session,
		history:    opts.History,
		cfg:        cfg,
		saveConfig: save,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{loadHistoryCmd(a.history)}
	if a.session.Running() {
		cmds = append(cmds, tickCmd(a.session.Generation()))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.addForm != nil {
			a.addForm = a.addForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.addForm != nil {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabAttendees && !a.roster.editing() {
				a.moveRosterCursor(-1)
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			if a.activeTab == tabAttendees && !a.roster.editing() {
				a.moveRosterCursor(1)
			}
			return a, nil

		case tea.MouseButtonLeft:
			if msg.Action != tea.MouseActionPress {
				return a, nil
			}
			// Tabs stay put while an input has focus.
			if msg.Y == 0 && !a.inputActive() {
				if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case tickMsg:
		// A tick from before the last pause or reset carries a stale
		// generation and is dropped without rescheduling.
		if !a.session.Tick(msg.gen) {
			return a, nil
		}
		a.costTrail = append(a.costTrail, a.session.Projection().CurrentCost)
		if len(a.costTrail) > maxCostTrail {
			a.costTrail = a.costTrail[len(a.costTrail)-maxCostTrail:]
		}
		return a, tickCmd(msg.gen)

	case historyLoadedMsg:
		a.meetings = msg.meetings
		a.historyErr = msg.err
		return a, nil
	}

	// Forward unhandled messages to the add form (cursor blinks, etc.)
	if a.addForm != nil {
		return a.updateAddForm(msg)
	}

	return a, nil
}

// inputActive reports whether a text input currently owns the keyboard.
func (a App) inputActive() bool {
	return a.roster.editing() || a.settings.editing || a.target.editing
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.addForm != nil {
		return a.updateAddForm(msg)
	}
	if a.roster.editing() {
		return a.updateRosterInput(msg)
	}
	if a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.target.editing {
		return a.updateTargetInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	a.notice = ""

	switch a.activeTab {
	case tabAttendees:
		if next, cmd, ok := a.updateAttendeesKey(key); ok {
			return next, cmd
		}
	case tabHistory:
		if key == "R" {
			return a, loadHistoryCmd(a.history)
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case " ", "s":
		return a.toggle()
	case "r":
		return a.reset()
	case "+", "=":
		a.session.AdjustTarget(targetStep)
		return a, nil
	case "-", "_":
		a.session.AdjustTarget(-targetStep)
		return a, nil
	case "t":
		return a.targetStartEdit()
	case "a":
		return a.openAddForm()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// toggle starts or pauses the meeting. Starting schedules a tick chain for
// the new generation; pausing lets the old chain die on its next tick.
func (a App) toggle() (tea.Model, tea.Cmd) {
	state, gen := a.session.Toggle()
	if state == meeting.Running {
		return a, tickCmd(gen)
	}
	return a, nil
}

func (a App) reset() (tea.Model, tea.Cmd) {
	rec, ok := a.session.Reset()
	a.costTrail = nil
	if !ok {
		return a, nil
	}
	a.notice = "recorded " + a.money(rec.TotalCost)
	return a, loadHistoryCmd(a.history)
}

func (a App) money(v float64) string {
	return cli.FormatCurrency(v, a.cfg.General.CurrencySymbol)
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.addForm != nil {
		return a.viewAddForm()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	t := theme.Active
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Background).
		Render(fmt.Sprintf("Terminal too narrow (%d cols). Need at least %d.", a.width, minTerminalWidth))

	return lipgloss.Place(a.width, h, lipgloss.Center, lipgloss.Center, msg,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Meeting", []struct{ key, desc string }{
			{"space", "Start / pause the timer"},
			{"r", "Reset (records the meeting)"},
			{"+ -", "Target ± 5 minutes"},
			{"t", "Type a target (blank clears)"},
		}},
		{"Attendees", []struct{ key, desc string }{
			{"a", "Add attendee"},
			{"enter e", "Edit hourly rate"},
			{"y", "Edit yearly salary"},
			{"n", "Rename"},
			{"d", "Remove"},
			{"j k", "Move selection"},
		}},
		{"General", []struct{ key, desc string }{
			{"1-4 ← →", "Switch tab"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar
	header := components.RenderTabBar(a.activeTab, w)

	// 2. Status bar
	info := components.StatusInfo{
		Running: a.session.Running(),
		Elapsed: cli.FormatElapsed(a.session.Elapsed()),
		Notice:  a.notice,
	}
	if err := a.session.PersistErr(); err != nil {
		info.Warning = "not saved: " + err.Error()
	}
	statusBar := components.RenderStatusBar(w, info)

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabMeeting:
		content = a.renderMeetingTab(cw)
	case tabAttendees:
		content = a.renderAttendeesTab(cw, contentH)
	case tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Center when the terminal is wider than the content
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct {
	gen uint64
}

func tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func loadHistoryCmd(h HistoryLister) tea.Cmd {
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		meetings, err := h.ListMeetings(historyLimit)
		return historyLoadedMsg{meetings: meetings, err: err}
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
