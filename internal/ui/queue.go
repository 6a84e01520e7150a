package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webprint/platen/internal/state"
	"github.com/webprint/platen/internal/webprint"
)

// clampQueueSelection keeps the selected row valid when the task list
// changes, preserving selection by task ID when possible.
func (m *Model) clampQueueSelection() {
	tasks := m.snapshot.Tasks
	if len(tasks) == 0 {
		m.selectedRow = 0
		return
	}

	if sel := m.selectedTask(); sel != nil {
		for i, task := range tasks {
			if task.TaskID == sel.TaskID {
				m.selectedRow = i
				return
			}
		}
	}

	if m.selectedRow >= len(tasks) {
		m.selectedRow = len(tasks) - 1
	}
}

// selectedTask returns the currently selected task, or nil.
func (m *Model) selectedTask() *state.TaskView {
	if m.selectedRow < 0 || m.selectedRow >= len(m.snapshot.Tasks) {
		return nil
	}
	return &m.snapshot.Tasks[m.selectedRow]
}

// handleQueueKey processes keyboard input for the queue view.
func (m Model) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	taskCount := len(m.snapshot.Tasks)

	switch msg.String() {
	case "j", "down":
		if m.selectedRow < taskCount-1 {
			m.selectedRow++
		}
	case "k", "up":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "g", "home":
		m.selectedRow = 0
	case "G", "end":
		if taskCount > 0 {
			m.selectedRow = taskCount - 1
		}

	case "c":
		// Cancel the selected task on the server
		task := m.selectedTask()
		if task == nil || task.Status.Terminal() {
			return m, nil
		}
		id := task.TaskID
		m.confirm = &confirmState{
			prompt: fmt.Sprintf("Cancel task %s (%s)?", shortID(id), task.FileName),
			cmd: actionCmd("cancel task", func() error {
				_, err := m.client.CancelTask(m.ctx, id)
				return err
			}),
		}

	case "x":
		// Stop tracking locally; the server-side task is untouched.
		task := m.selectedTask()
		if task == nil {
			return m, nil
		}
		id := task.TaskID
		m.confirm = &confirmState{
			prompt: fmt.Sprintf("Stop tracking %s?", task.FileName),
			cmd: actionCmd("untrack", func() error {
				return m.registry.Remove(id)
			}),
		}

	case "P":
		if !m.snapshot.HasQueue {
			return m, nil
		}
		if m.snapshot.Queue.SchedulerRunning() {
			return m, actionCmd("pause queue", func() error {
				_, err := m.client.PauseQueue(m.ctx)
				return err
			})
		}
		return m, actionCmd("resume queue", func() error {
			_, err := m.client.ResumeQueue(m.ctx)
			return err
		})

	case "C":
		m.confirm = &confirmState{
			prompt: "Clear all waiting jobs from the server queue?",
			cmd: actionCmd("clear queue", func() error {
				_, err := m.client.ClearQueue(m.ctx)
				return err
			}),
		}
	}

	return m, nil
}

// renderQueue renders the queue view with split layout (table + detail).
func (m Model) renderQueue() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 2 // header + cmdbar

	if len(m.snapshot.Tasks) == 0 {
		msg := "No tracked print tasks. Press s to submit a document."
		if m.snapshot.TasksErr != nil {
			msg = webprint.UserMessage(m.snapshot.TasksErr)
		}
		empty := styles.MutedText.Render(msg)
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, empty)
	}

	// 40% table, 60% detail; extra wide screens give the detail more room.
	var tableWidth int
	if m.width >= 160 {
		tableWidth = m.width * 30 / 100
	} else {
		tableWidth = m.width * 40 / 100
	}
	detailWidth := m.width - tableWidth

	task := m.selectedTask()

	tableTitle := fmt.Sprintf("Tasks (%d)", len(m.snapshot.Tasks))
	tableFocused := m.focusedPane == 0
	tableBg := m.theme.SurfaceAlt
	if tableFocused {
		tableBg = m.theme.FocusBg
	}
	tableContent := m.renderTaskTable(tableWidth-2, tableBg)
	tablePane := m.renderTitledBox(tableTitle, tableContent, tableWidth, contentHeight, tableFocused)

	detailFocused := m.focusedPane == 1
	detailBg := m.theme.SurfaceAlt
	if detailFocused {
		detailBg = m.theme.FocusBg
	}
	var detailContent string
	if task != nil {
		detailContent = m.renderTaskDetail(*task, detailWidth-4, detailBg)
	} else {
		detailContent = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(detailBg)).
			Render("Select a task")
	}
	detailPane := m.renderTitledBox("Details", detailContent, detailWidth, contentHeight, detailFocused)

	return lipgloss.JoinHorizontal(lipgloss.Top, tablePane, detailPane)
}

// renderTaskTable renders tracked tasks as styled rows.
func (m Model) renderTaskTable(width int, bgColor string) string {
	var lines []string
	for i, task := range m.snapshot.Tasks {
		if i == m.selectedRow {
			content := m.formatTaskRow(task, width, m.theme.SelectionBg, true)
			lines = append(lines, lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.SelectionBg)).
				Width(width).
				Render(content))
		} else {
			content := m.formatTaskRow(task, width, bgColor, false)
			lines = append(lines, lipgloss.NewStyle().
				Background(lipgloss.Color(bgColor)).
				Width(width).
				Render(content))
		}
	}
	return strings.Join(lines, "\n")
}

// formatTaskRow formats one task row: "name · Status 40%".
func (m Model) formatTaskRow(task state.TaskView, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	name := task.FileName
	if name == "" {
		name = shortID(task.TaskID)
	}

	statusParts := []string{task.Status.Text()}
	if !task.Status.Terminal() && task.Progress > 0 {
		statusParts = append(statusParts, fmt.Sprintf("%d%%", min(task.Progress, 100)))
	}
	statusStr := strings.Join(statusParts, " ")

	nameWidth := max(width-len(statusStr)-5, 10)

	var nameStyle, sepStyle, statusStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		nameStyle, sepStyle, statusStyle = selText, selText, selText
	} else {
		styles := m.theme.Styles()
		nameStyle = styles.Text
		sepStyle = styles.FaintText
		statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.StatusColor(task.Status.Color())))
	}

	return bg.Render(truncate(name, nameWidth), nameStyle) +
		bg.Render(" · ", sepStyle) +
		bg.Render(statusStr, statusStyle)
}

// renderTaskDetail renders the detail pane for one task.
func (m Model) renderTaskDetail(task state.TaskView, width int, bgColor string) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(bgColor)

	row := func(label, value string, valueStyle lipgloss.Style) string {
		labelStyle := styles.MutedText
		return bg.Render(fmt.Sprintf("%-10s", label), labelStyle) +
			bg.Render(truncate(value, max(width-12, 10)), valueStyle)
	}

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.StatusColor(task.Status.Color())))

	lines := []string{
		row("Task", task.TaskID, styles.Text),
		row("File", task.FileName, styles.Text),
		row("Status", task.Status.Text(), statusStyle),
	}

	if !task.Status.Terminal() || task.Progress > 0 {
		lines = append(lines, row("Progress", renderProgressBar(task.Progress, max(width-22, 10))+
			fmt.Sprintf(" %d%%", min(task.Progress, 100)), styles.AccentText))
	}
	if task.Message != "" {
		msgStyle := styles.MutedText
		if task.Status == webprint.StatusFailed {
			msgStyle = styles.DangerText
		}
		lines = append(lines, row("Message", task.Message, msgStyle))
	}

	printer := task.PrinterName
	if printer == "" {
		printer = task.PrinterID
	}
	lines = append(lines,
		row("Printer", printer, styles.Text),
		row("Copies", fmt.Sprintf("%d", max(task.Copies, 1)), styles.Text),
		row("Paper", task.PaperSize, styles.Text),
		row("Duplex", titleCase(task.Duplex), styles.Text),
		row("Color", titleCase(task.ColorMode), styles.Text),
		row("Submitted", formatSubmitTime(task.ParsedSubmitTime()), styles.Text),
	)

	return strings.Join(lines, "\n")
}

// renderProgressBar renders a fixed-width unicode progress bar.
func renderProgressBar(percent, width int) string {
	if width < 4 {
		width = 4
	}
	percent = min(max(percent, 0), 100)
	filled := width * percent / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// renderTitledBox renders content in a box with the title embedded in
// the top border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := width - 2
	titleLen := len(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2

	var paddedLines []string
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}

// shortID abbreviates a task ID for display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
