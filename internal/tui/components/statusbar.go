package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/meetcost/internal/tui/theme"
)

// StatusInfo is what the bottom bar reports on its right side.
type StatusInfo struct {
	Running bool
	Elapsed string
	Notice  string // transient message, e.g. "recorded $12.40"
	Warning string // persistence failure, shown in orange
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	left := base.Render(" ") +
		keyStyle.Render("[space]") + base.Render("start/pause  ") +
		keyStyle.Render("[r]") + base.Render("eset  ") +
		keyStyle.Render("[?]") + base.Render("help  ") +
		keyStyle.Render("[q]") + base.Render("uit")

	var right []string
	switch {
	case info.Warning != "":
		right = append(right, lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render(info.Warning))
	case info.Notice != "":
		right = append(right, lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render(info.Notice))
	}
	if info.Running {
		right = append(right, lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true).Render("● REC "+info.Elapsed))
	} else {
		right = append(right, base.Render("■ paused "+info.Elapsed))
	}
	rightStr := strings.Join(right, base.Render("  ")) + base.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}

	return left + base.Render(strings.Repeat(" ", padding)) + rightStr
}
