// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "$"

// FormatCurrency formats money with thousands separators and two decimals.
// e.g., 1234.5 -> "$1,234.50"
func FormatCurrency(amount float64, symbol string) string {
	if symbol == "" {
		symbol = DefaultCurrency
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	sign := ""
	cents := int64(math.Round(amount * 100))
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, symbol, FormatNumber(cents/100), cents%100)
}

// FormatRate formats an hourly rate, e.g. "$215.00/hr".
func FormatRate(hourly float64, symbol string) string {
	return FormatCurrency(hourly, symbol) + "/hr"
}

// FormatElapsed formats seconds as a stopwatch reading. The hour field is
// omitted when zero.
// e.g., 3725 -> "1:02:05", 125 -> "02:05"
func FormatElapsed(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	hours := secs / 3600
	mins := (secs % 3600) / 60
	s := secs % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, s)
	}
	return fmt.Sprintf("%02d:%02d", mins, s)
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatMinutes formats a target duration, with 0 shown as "none".
func FormatMinutes(m int) string {
	if m <= 0 {
		return "none"
	}
	return FormatDuration(int64(m) * 60)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats the gap between a running cost and its projection,
// signed. Positive means over the target.
func FormatDelta(current, projected float64, symbol string) string {
	delta := current - projected
	if delta >= 0 {
		return "+" + FormatCurrency(delta, symbol)
	}
	return "-" + FormatCurrency(-delta, symbol)
}
