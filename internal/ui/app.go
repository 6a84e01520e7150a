package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/webprint/platen/internal/config"
	"github.com/webprint/platen/internal/prefs"
	"github.com/webprint/platen/internal/registry"
	"github.com/webprint/platen/internal/state"
	"github.com/webprint/platen/internal/webprint"
)

// View represents the current active view.
type View int

const (
	ViewQueue View = iota
	ViewPrinters
	ViewSubmit
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    *webprint.Client
	Store     *state.Store
	Registry  *registry.Registry
	Config    *config.Config
	PollTick  time.Duration
	ThemeName string
	Prefs     prefs.Prefs
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    *webprint.Client
	store     *state.Store
	registry  *registry.Registry
	config    *config.Config
	userPrefs prefs.Prefs
	prefsPath string
	pollTick  time.Duration

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	focusedPane int // 0 = table, 1 = detail

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Queue state
	selectedRow int

	// Printers state
	printers    []webprint.Printer
	printersErr error
	printerRow  int

	// Submit form state
	submit submitForm

	// Overlays
	showHelp bool
	confirm  *confirmState

	// Transient outcome of the last queue/task action
	notice    string
	noticeErr bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = 5 * time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		registry:    opts.Registry,
		config:      opts.Config,
		userPrefs:   opts.Prefs,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		theme:       GetTheme(themeName),
		currentView: ViewQueue,
		submit:      newSubmitForm(opts.Prefs.LastPrinter),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.client != nil {
		cmds = append(cmds, fetchPrintersCmd(m.ctx, m.client))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.clampQueueSelection()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.clampQueueSelection()
		return m, nil

	case printersMsg:
		m.printers = msg.printers
		m.printersErr = msg.err
		if m.printerRow >= len(m.printers) {
			m.printerRow = 0
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.notice = msg.label + " failed: " + webprint.UserMessage(msg.err)
			m.noticeErr = true
			return m, nil
		}
		m.notice = msg.label + " ok"
		m.noticeErr = false
		// Pull fresh data right away instead of waiting for the tick.
		return m, fetchSnapshotCmd(m.store)

	case submitDoneMsg:
		return m.handleSubmitDone(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}
	if m.confirm != nil {
		return m.renderConfirm()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}

	// The submit form owns the keyboard while a field is focused.
	if m.currentView == ViewSubmit {
		return m.handleSubmitKey(msg)
	}

	switch msg.String() {
	case "e":
		return m, tea.Quit

	case "h", "?":
		m.showHelp = true
		return m, nil

	case "T":
		// Cycle theme
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.userPrefs.Theme = m.theme.Name
		_ = prefs.Save(m.prefsPath, m.userPrefs)
		return m, nil

	case "q", "esc":
		m.currentView = ViewQueue
		return m, nil

	case "p":
		m.currentView = ViewPrinters
		return m, fetchPrintersCmd(m.ctx, m.client)

	case "s", "n":
		m.openSubmitForm()
		return m, nil

	case "H":
		// On-demand server health check
		client, ctx := m.client, m.ctx
		return m, actionCmd("health check", func() error {
			_, err := client.Health(ctx)
			return err
		})

	case "tab":
		if m.currentView == ViewQueue {
			m.focusedPane = 1 - m.focusedPane
		}
		return m, nil
	}

	switch m.currentView {
	case ViewQueue:
		return m.handleQueueKey(msg)
	case ViewPrinters:
		return m.handlePrintersKey(msg)
	}

	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewPrinters && m.client != nil {
		cmds = append(cmds, fetchPrintersCmd(m.ctx, m.client))
	}
	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	switch m.currentView {
	case ViewPrinters:
		b.WriteString(m.renderPrinters())
	case ViewSubmit:
		b.WriteString(m.renderSubmit())
	default:
		b.WriteString(m.renderQueue())
	}

	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type printersMsg struct {
	printers []webprint.Printer
	err      error
}

type actionDoneMsg struct {
	label string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func fetchPrintersCmd(ctx context.Context, client *webprint.Client) tea.Cmd {
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		printers, err := client.Printers(ctx)
		return printersMsg{printers: printers, err: err}
	}
}

func actionCmd(label string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{label: label, err: fn()}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
