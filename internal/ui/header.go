package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/webprint/platen/internal/webprint"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	var parts []string

	// Logo
	parts = append(parts, bg.Render("platen", styles.Logo))

	// Scheduler indicator
	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	} else if !m.snapshot.HasQueue {
		parts = append(parts, bg.Render("● CONNECTING", styles.WarningText))
	} else if m.snapshot.Queue.SchedulerRunning() {
		parts = append(parts, bg.Render("● RUNNING", styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("● PAUSED", styles.WarningText))
	}

	// Queue counts
	if m.snapshot.HasQueue {
		stats := m.snapshot.Queue.QueueStats
		parts = append(parts,
			bg.Render("Queue:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", m.snapshot.Queue.QueueSize), styles.Text))

		if active := stats.Processing; active > 0 {
			activeStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.StatusColor("orange")))
			parts = append(parts,
				bg.Render("Active:", styles.MutedText)+bg.Space()+
					bg.Render(fmt.Sprintf("%d", active), activeStyle))
		}
		if stats.Failed > 0 {
			parts = append(parts,
				bg.Render("Failed:", styles.MutedText)+bg.Space()+
					bg.Render(fmt.Sprintf("%d", stats.Failed), styles.DangerText))
		}
	}

	// Tracked task count
	parts = append(parts,
		bg.Render("Tracked:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Tasks)), styles.Text))

	// Timestamp with relative indicator
	if !m.lastUpdated.IsZero() {
		ts := m.lastUpdated.Format("15:04:05")
		if rel := humanizeSince(m.lastUpdated); rel != "" {
			ts += " (" + rel + ")"
		}
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	// Poll errors
	if m.snapshot.QueueErr != nil {
		errText := truncate(webprint.UserMessage(m.snapshot.QueueErr), 60)
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText)+bg.Space()+
				bg.Render(errText, styles.DangerText))
	}

	// Outcome of the last action
	if m.notice != "" {
		noticeStyle := styles.InfoText
		if m.noticeErr {
			noticeStyle = styles.WarningText
		}
		parts = append(parts, bg.Render(truncate(m.notice, 60), noticeStyle))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewPrinters:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"Enter", "Use Printer"},
			{"r", "Refresh"},
			{"q", "Queue"},
			{"s", "Submit"},
			{"?", "More"},
		}
	case ViewSubmit:
		commands = []cmd{
			{"Tab", "Next Field"},
			{"Enter", "Submit"},
			{"Esc", "Back"},
		}
	default: // ViewQueue
		commands = []cmd{
			{"j/k", "Navigate"},
			{"s", "Submit"},
			{"c", "Cancel Task"},
			{"x", "Untrack"},
			{"P", m.pauseResumeLabel()},
			{"C", "Clear Queue"},
			{"p", "Printers"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// pauseResumeLabel returns the label for the scheduler toggle key.
func (m Model) pauseResumeLabel() string {
	if m.snapshot.HasQueue && !m.snapshot.Queue.SchedulerRunning() {
		return "Resume"
	}
	return "Pause"
}
