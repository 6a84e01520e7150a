package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webprint/platen/internal/webprint"
)

// handlePrintersKey processes keyboard input for the printers view.
func (m Model) handlePrintersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.printers)

	switch msg.String() {
	case "j", "down":
		if m.printerRow < count-1 {
			m.printerRow++
		}
	case "k", "up":
		if m.printerRow > 0 {
			m.printerRow--
		}
	case "g", "home":
		m.printerRow = 0
	case "G", "end":
		if count > 0 {
			m.printerRow = count - 1
		}
	case "r":
		return m, fetchPrintersCmd(m.ctx, m.client)
	case "enter":
		if m.printerRow >= 0 && m.printerRow < count {
			m.openSubmitForm()
			m.submit.setPrinter(m.printers[m.printerRow])
		}
	}

	return m, nil
}

// renderPrinters renders the printer list view.
func (m Model) renderPrinters() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 2

	if m.printersErr != nil {
		msg := styles.DangerText.Render(webprint.UserMessage(m.printersErr))
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, msg)
	}
	if len(m.printers) == 0 {
		msg := styles.MutedText.Render("No printers available. Press r to refresh.")
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, msg)
	}

	bgColor := m.theme.SurfaceAlt
	width := m.width

	var lines []string
	for i, printer := range m.printers {
		selected := i == m.printerRow
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatPrinterRow(printer, width-2, rowBg, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width-2).
			Render(content))
	}

	title := fmt.Sprintf("Printers (%d)", len(m.printers))
	return m.renderTitledBox(title, strings.Join(lines, "\n"), width, contentHeight, true)
}

// formatPrinterRow formats one printer row: "● Name · status · description".
func (m Model) formatPrinterRow(printer webprint.Printer, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	var dotStyle, nameStyle, sepStyle, descStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		dotStyle, nameStyle, sepStyle, descStyle = selText, selText, selText, selText
	} else {
		switch printer.Status {
		case "online":
			dotStyle = styles.SuccessText
		case "busy":
			dotStyle = styles.WarningText
		default:
			dotStyle = styles.DangerText
		}
		nameStyle = styles.Text
		sepStyle = styles.FaintText
		descStyle = styles.MutedText
	}

	parts := []string{
		bg.Render("●", dotStyle),
		bg.Render(printer.Name, nameStyle),
		bg.Render("·", sepStyle),
		bg.Render(titleCase(printer.Status), descStyle),
	}
	if printer.Description != "" {
		parts = append(parts,
			bg.Render("·", sepStyle),
			bg.Render(truncate(printer.Description, max(width-40, 10)), descStyle))
	}

	return strings.Join(parts, bg.Space())
}
