package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// truncate shortens a string to the given limit, adding an ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// humanizeDuration renders an age like "12s", "3m" or "2h".
func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

// formatMoney renders an amount in rupees with two decimals.
func formatMoney(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

// pendingMark is appended to values awaiting the server.
const pendingMark = "…"

func markPending(value string, pending bool) string {
	if pending {
		return value + pendingMark
	}
	return value
}
