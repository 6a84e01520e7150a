package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmState holds a pending confirmation: the question shown to the
// user and the command to run when they confirm.
type confirmState struct {
	prompt string
	cmd    tea.Cmd
}

// handleConfirmKey processes keyboard input while a confirmation is open.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		cmd := m.confirm.cmd
		m.confirm = nil
		return m, cmd
	case "n", "esc", "q":
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

// renderConfirm renders the confirmation modal.
func (m Model) renderConfirm() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(m.confirm.prompt))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("y") + styles.MutedText.Render(" confirm"))
	b.WriteString(styles.FaintText.Render("   "))
	b.WriteString(styles.AccentText.Render("n") + styles.MutedText.Render(" cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Warning)).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
