package ui

import (
	"fmt"
	"strings"
	"time"
)

// renderHeader renders the status bar: logo, view tabs, cart totals, in-flight
// mutations and refresh health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("tote", styles.Logo)}

	tabs := make([]string, 0, viewCount)
	for v := View(0); v < viewCount; v++ {
		label := viewLabel(v)
		if v == m.currentView {
			tabs = append(tabs, bg.Render("["+label+"]", styles.AccentText.Bold(true)))
		} else {
			tabs = append(tabs, bg.Render(label, styles.MutedText))
		}
	}
	parts = append(parts, bg.Join(tabs, " "))

	parts = append(parts,
		bg.Render("Cart:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", m.snapshot.CartCount), styles.Text)+bg.Space()+
			bg.Render(formatMoney(m.snapshot.Subtotal), styles.InfoText),
	)

	if m.disp != nil {
		if n := m.disp.Inflight(); n > 0 {
			parts = append(parts,
				bg.Render("Saving:", styles.MutedText)+bg.Space()+
					bg.Render(fmt.Sprintf("%d", n), styles.WarningText))
		}
	}

	if status := m.formatRefreshStatus(compact, styles, bg); status != "" {
		parts = append(parts, status)
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func viewLabel(v View) string {
	switch v {
	case ViewCart:
		return "Cart"
	case ViewAddresses:
		return "Addresses"
	case ViewOrders:
		return "Orders"
	case ViewActivity:
		return "Activity"
	}
	return ""
}

// formatRefreshStatus describes the last refresh: offline, failed or its age.
func (m Model) formatRefreshStatus(compact bool, styles Styles, bg BgStyle) string {
	snap := m.snapshot
	if snap.IsOffline() {
		return bg.Render("OFFLINE", styles.DangerText) + bg.Space() +
			bg.Render("Retrying...", styles.WarningText.Bold(true))
	}
	if snap.LastError != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		return bg.Render("ERROR", styles.DangerText) + bg.Space() +
			bg.Render(truncate(errorText(snap.LastError), maxErr), styles.DangerText)
	}
	return bg.Render(m.formatTimestamp(), styles.MutedText)
}

// formatTimestamp formats the last update time with a relative indicator.
func (m Model) formatTimestamp() string {
	last := m.snapshot.LastUpdated
	if last.IsZero() {
		return "Loading..."
	}
	now := m.now
	if now.IsZero() {
		now = time.Now()
	}
	return last.Format("15:04:05") + " (" + humanizeDuration(now.Sub(last)) + ")"
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewAddresses:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Default"},
			{"D", "Delete"},
		}
	case ViewOrders:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"c", "Cancel"},
			{"r", "Return"},
			{"n/p", "Page"},
		}
	case ViewActivity:
		commands = []cmd{
			{"j/k", "Scroll"},
		}
	default: // ViewCart
		commands = []cmd{
			{"j/k", "Navigate"},
			{"s/S", "Size"},
			{"+/-", "Qty"},
			{"x", "Remove"},
			{"P", "Checkout"},
		}
	}
	commands = append(commands, cmd{"R", "Refresh"}, cmd{"Tab", "View"}, cmd{"?", "More"})

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}
