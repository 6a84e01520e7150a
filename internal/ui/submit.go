package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webprint/platen/internal/prefs"
	"github.com/webprint/platen/internal/registry"
	"github.com/webprint/platen/internal/webprint"
)

// Submit form field indices.
const (
	fieldFile = iota
	fieldPrinter
	fieldCopies
	fieldPaper
	fieldDuplex
	fieldColor
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"File path",
	"Printer ID",
	"Copies",
	"Paper size",
	"Duplex",
	"Color mode",
}

// submitForm holds the state of the print submission form.
type submitForm struct {
	inputs      [fieldCount]textinput.Model
	focus       int
	printerName string // display name when picked from the printers view
	submitting  bool
	errMsg      string
}

func newSubmitForm(lastPrinter string) submitForm {
	var f submitForm
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		f.inputs[i] = in
	}
	f.inputs[fieldFile].Placeholder = "/path/to/document.pdf"
	f.inputs[fieldPrinter].SetValue(lastPrinter)
	f.inputs[fieldCopies].SetValue("1")
	f.inputs[fieldCopies].CharLimit = 3
	f.inputs[fieldPaper].SetValue("A4")
	f.inputs[fieldDuplex].SetValue("simplex")
	f.inputs[fieldColor].SetValue("grayscale")
	f.inputs[fieldFile].Focus()
	return f
}

func (f *submitForm) setPrinter(p webprint.Printer) {
	f.inputs[fieldPrinter].SetValue(p.ID)
	f.printerName = p.Name
}

func (f *submitForm) setFocus(idx int) {
	f.focus = (idx + fieldCount) % fieldCount
	for i := range f.inputs {
		if i == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// request builds the PrintRequest from the form fields.
func (f *submitForm) request() webprint.PrintRequest {
	copies, err := strconv.Atoi(strings.TrimSpace(f.inputs[fieldCopies].Value()))
	if err != nil || copies < 1 {
		copies = 1
	}
	return webprint.PrintRequest{
		FilePath:  strings.TrimSpace(f.inputs[fieldFile].Value()),
		PrinterID: strings.TrimSpace(f.inputs[fieldPrinter].Value()),
		Copies:    copies,
		PaperSize: strings.TrimSpace(f.inputs[fieldPaper].Value()),
		Duplex:    strings.ToLower(strings.TrimSpace(f.inputs[fieldDuplex].Value())),
		ColorMode: strings.ToLower(strings.TrimSpace(f.inputs[fieldColor].Value())),
	}
}

// openSubmitForm switches to the submit view, keeping prior field values.
func (m *Model) openSubmitForm() {
	m.currentView = ViewSubmit
	m.submit.errMsg = ""
	m.submit.setFocus(fieldFile)
}

// handleSubmitKey processes keyboard input for the submit form.
func (m Model) handleSubmitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submit.submitting {
		// Only escape works while an upload is in flight.
		if msg.String() == "esc" {
			m.currentView = ViewQueue
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.currentView = ViewQueue
		return m, nil

	case "tab", "down":
		m.submit.setFocus(m.submit.focus + 1)
		return m, nil

	case "shift+tab", "up":
		m.submit.setFocus(m.submit.focus - 1)
		return m, nil

	case "enter":
		return m.startSubmit()
	}

	var cmd tea.Cmd
	m.submit.inputs[m.submit.focus], cmd = m.submit.inputs[m.submit.focus].Update(msg)
	return m, cmd
}

// startSubmit validates the form and launches the upload.
func (m Model) startSubmit() (tea.Model, tea.Cmd) {
	req := m.submit.request()

	if req.FilePath == "" {
		m.submit.errMsg = "File path is required."
		return m, nil
	}
	if req.PrinterID == "" {
		m.submit.errMsg = "Printer is required. Pick one from the printers view (p)."
		return m, nil
	}
	// Catch unsupported formats and oversize files before any upload.
	if err := webprint.ValidateFile(req.FilePath); err != nil {
		m.submit.errMsg = webprint.UserMessage(err)
		return m, nil
	}

	m.submit.errMsg = ""
	m.submit.submitting = true

	fileName := filepath.Base(req.FilePath)
	printerName := m.submit.printerName
	if printerName == "" {
		printerName = req.PrinterID
	}
	client := m.client
	ctx := m.ctx

	return m, func() tea.Msg {
		receipt, err := client.SubmitPrint(ctx, req, nil)
		return submitDoneMsg{
			receipt:     receipt,
			req:         req,
			fileName:    fileName,
			printerName: printerName,
			err:         err,
		}
	}
}

type submitDoneMsg struct {
	receipt     *webprint.SubmitReceipt
	req         webprint.PrintRequest
	fileName    string
	printerName string
	err         error
}

// handleSubmitDone finalizes a submission attempt.
func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	m.submit.submitting = false

	if msg.err != nil {
		m.submit.errMsg = webprint.UserMessage(msg.err)
		return m, nil
	}

	// Track the new task locally so the poller starts following it.
	submittedAt := msg.receipt.Timestamp
	if submittedAt == "" {
		submittedAt = time.Now().Format(time.RFC3339)
	}
	info := registry.TaskInfo{
		TaskID:      msg.receipt.TaskID,
		FileName:    msg.fileName,
		PrinterID:   msg.req.PrinterID,
		PrinterName: msg.printerName,
		SubmittedAt: submittedAt,
	}
	if err := m.registry.Add(info); err != nil {
		m.notice = "submitted, but tracking failed: " + err.Error()
		m.noticeErr = true
	} else {
		m.notice = fmt.Sprintf("submitted %s as %s", msg.fileName, shortID(msg.receipt.TaskID))
		m.noticeErr = false
	}

	// Remember the printer for next time.
	m.userPrefs.LastPrinter = msg.req.PrinterID
	_ = prefs.Save(m.prefsPath, m.userPrefs)

	m.submit.inputs[fieldFile].SetValue("")
	m.currentView = ViewQueue
	return m, nil
}

// renderSubmit renders the submission form.
func (m Model) renderSubmit() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 2

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Submit Print Job"))
	b.WriteString("\n\n")

	for i := range m.submit.inputs {
		labelStyle := styles.MutedText
		if i == m.submit.focus {
			labelStyle = styles.AccentText
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", fieldLabels[i])))
		b.WriteString(m.submit.inputs[i].View())
		if i == fieldPrinter && m.submit.printerName != "" {
			b.WriteString(styles.FaintText.Render("  (" + m.submit.printerName + ")"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.submit.submitting:
		b.WriteString(styles.WarningText.Render("Uploading..."))
	case m.submit.errMsg != "":
		b.WriteString(styles.DangerText.Render(m.submit.errMsg))
	default:
		b.WriteString(styles.FaintText.Render(
			fmt.Sprintf("PDF, DOC, or DOCX up to %s", formatBytes(webprint.MaxFileSize))))
	}

	form := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(min(m.width-4, 72)).
		Render(b.String())

	return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, form)
}
