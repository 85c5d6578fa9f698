package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)

// toast is a transient notification.
type toast struct {
	text    string
	level   toastLevel
	expires time.Time
}

// pushToast queues a notification, dropping the oldest beyond maxToasts.
func (m *Model) pushToast(text string, level toastLevel) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	now := m.now
	if now.IsZero() {
		now = time.Now()
	}
	m.toasts = append(m.toasts, toast{text: text, level: level, expires: now.Add(ToastTTL)})
	if over := len(m.toasts) - maxToasts; over > 0 {
		m.toasts = append([]toast(nil), m.toasts[over:]...)
	}
}

// expireToasts drops notifications whose time is up.
func (m *Model) expireToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// renderToasts stacks the active notifications, newest last.
func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		var style lipgloss.Style
		switch t.level {
		case toastError:
			style = styles.DangerText
		case toastSuccess:
			style = styles.SuccessText
		default:
			style = styles.InfoText
		}
		box := lipgloss.NewStyle().
			Background(lipgloss.Color(m.theme.SurfaceAlt)).
			Padding(0, 1)
		lines = append(lines, box.Render(style.Background(lipgloss.Color(m.theme.SurfaceAlt)).Render(t.text)))
	}
	return strings.Join(lines, "\n")
}
