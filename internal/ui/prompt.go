package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tote/internal/shop"
)

// confirmDialog asks a yes/no question before running action.
type confirmDialog struct {
	title  string
	body   string
	action func(Model) (Model, tea.Cmd)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		action := m.confirm.action
		m.confirm = nil
		return action(m)
	case key.Matches(msg, m.keys.Deny), key.Matches(msg, m.keys.Quit):
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (m Model) renderConfirm() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(m.confirm.title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(m.confirm.body))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("y/enter") + styles.MutedText.Render(" confirm  ") +
		styles.AccentText.Render("n/esc") + styles.MutedText.Render(" cancel"))
	return m.placeModal(b.String())
}

// Return prompt fields.
const (
	fieldReason = iota
	fieldRemarks
	fieldCount
)

// returnPrompt collects the reason and remarks for a return request.
type returnPrompt struct {
	orderID string
	itemID  string
	product string
	inputs  [fieldCount]textinput.Model
	focus   int
	err     string
}

func newReturnPrompt(orderID, itemID, product string) *returnPrompt {
	p := &returnPrompt{orderID: orderID, itemID: itemID, product: product}

	reason := textinput.New()
	reason.Placeholder = "Size too small"
	reason.CharLimit = 120
	reason.Width = 40
	reason.Prompt = "Reason:  "

	remarks := textinput.New()
	remarks.Placeholder = "optional"
	remarks.CharLimit = 250
	remarks.Width = 40
	remarks.Prompt = "Remarks: "

	p.inputs = [fieldCount]textinput.Model{reason, remarks}
	return p
}

// focusCmd focuses the current field and blurs the others.
func (p *returnPrompt) focusCmd() tea.Cmd {
	var cmd tea.Cmd
	for i := range p.inputs {
		if i == p.focus {
			cmd = p.inputs[i].Focus()
		} else {
			p.inputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.prompt
	switch {
	case key.Matches(msg, m.keys.Escape), msg.Type == tea.KeyCtrlC:
		m.prompt = nil
		return m, nil
	case key.Matches(msg, m.keys.Field):
		p.focus = (p.focus + 1) % fieldCount
		return m, p.focusCmd()
	case msg.Type == tea.KeyEnter:
		return m.submitReturn()
	}

	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return m, cmd
}

// submitReturn sends the return request. Validation problems keep the prompt
// open with the message; anything else closes it.
func (m Model) submitReturn() (tea.Model, tea.Cmd) {
	p := m.prompt
	if m.store == nil {
		m.prompt = nil
		return m, nil
	}
	reason := p.inputs[fieldReason].Value()
	remarks := p.inputs[fieldRemarks].Value()
	t, err := m.store.Orders.Return(m.ctx, p.orderID, p.itemID, reason, remarks)
	if err != nil && shop.KindOf(err) == shop.KindValidation {
		p.err = errorText(err)
		p.focus = fieldReason
		return m, p.focusCmd()
	}
	m.prompt = nil
	return startTask(m, t, err, "Return requested.", false)
}

func (m Model) renderPrompt() string {
	styles := m.theme.Styles()
	p := m.prompt
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Return " + truncate(p.product, 36)))
	b.WriteString("\n\n")
	for i := range p.inputs {
		b.WriteString(p.inputs[i].View())
		b.WriteString("\n")
	}
	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(p.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.AccentText.Render("enter") + styles.MutedText.Render(" submit  ") +
		styles.AccentText.Render("tab") + styles.MutedText.Render(" field  ") +
		styles.AccentText.Render("esc") + styles.MutedText.Render(" cancel"))
	return m.placeModal(b.String())
}

// placeModal centers content in a bordered box over the screen.
func (m Model) placeModal(content string) string {
	styles := m.theme.Styles()
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		styles.Modal.Width(56).Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
