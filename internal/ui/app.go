package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/tote/internal/logtail"
	"github.com/five82/tote/internal/mutation"
	"github.com/five82/tote/internal/prefs"
	"github.com/five82/tote/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewCart View = iota
	ViewAddresses
	ViewOrders
	ViewActivity
	viewCount
)

var viewNames = [viewCount]string{"cart", "addresses", "orders", "activity"}

// String returns the view's lowercase name as stored in prefs.
func (v View) String() string {
	if v < 0 || v >= viewCount {
		return viewNames[ViewCart]
	}
	return viewNames[v]
}

// parseView maps a stored name back to a View, defaulting to the cart.
func parseView(name string) View {
	for i, n := range viewNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return View(i)
		}
	}
	return ViewCart
}

// Refresher asks the poller for an immediate refresh.
type Refresher interface {
	RefreshNow()
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *state.Store
	Dispatcher *mutation.Dispatcher
	Refresher  Refresher
	Log        *zap.Logger
	LogFile    string
	PollTick   time.Duration
	ThemeName  string
	View       string
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	disp      *mutation.Dispatcher
	refresher Refresher
	log       *zap.Logger
	logFile   string
	prefsPath string
	uiTick    time.Duration

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	selected    [viewCount]int

	// Data state
	snapshot state.Snapshot
	now      time.Time

	// Activity state
	activity         []logtail.Entry
	activityViewport viewport.Model

	// Overlays
	toasts   []toast
	showHelp bool
	confirm  *confirmDialog
	prompt   *returnPrompt
}

// activityLines is how much of the log file the Activity view reads.
const activityLines = 300

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	uiTick := opts.PollTick
	if uiTick <= 0 {
		uiTick = DefaultUIInterval
	}

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		disp:        opts.Dispatcher,
		refresher:   opts.Refresher,
		log:         log.Named("ui"),
		logFile:     opts.LogFile,
		prefsPath:   prefsPath,
		uiTick:      uiTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: parseView(opts.View),
		now:         time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.uiTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewActivity {
		cmds = append(cmds, readActivityCmd(m.logFile))
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
		if !m.ready {
			m.activityViewport = viewport.New(msg.Width, m.contentHeight())
		} else {
			m.activityViewport.Width = msg.Width
			m.activityViewport.Height = m.contentHeight()
		}
		m.ready = true
		m.updateActivityViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.clampSelection()
		return m, nil

	case activityMsg:
		m.activity = msg.entries
		m.updateActivityViewport()
		return m, nil

	case mutationDoneMsg:
		return m.handleMutationDone(msg)

	case noticeMsg:
		m.pushToast(msg.text, msg.level)
		return m, nil
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
	if m.prompt != nil {
		return m.renderPrompt()
	}
	if m.confirm != nil {
		return m.renderConfirm()
	}
	return m.renderMain()
}

// handleKey routes a key to the open overlay, the global bindings, then the
// current view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.NextView):
		return m.switchView((m.currentView + 1) % viewCount)

	case key.Matches(msg, m.keys.PrevView):
		return m.switchView((m.currentView + viewCount - 1) % viewCount)

	case key.Matches(msg, m.keys.Refresh):
		m.requestRefresh()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil
	}

	switch m.currentView {
	case ViewCart:
		return m.handleCartKey(msg)
	case ViewAddresses:
		return m.handleAddressKey(msg)
	case ViewOrders:
		return m.handleOrdersKey(msg)
	case ViewActivity:
		var cmd tea.Cmd
		m.activityViewport, cmd = m.activityViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.savePrefs()
	if v == ViewActivity {
		return m, readActivityCmd(m.logFile)
	}
	return m, nil
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, View: m.currentView.String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn("save prefs failed", zap.Error(err))
	}
}

func (m *Model) requestRefresh() {
	if m.refresher != nil {
		m.refresher.RefreshNow()
	}
}

// rowCount returns the number of selectable rows in view v.
func (m Model) rowCount(v View) int {
	switch v {
	case ViewCart:
		return len(m.snapshot.Cart)
	case ViewAddresses:
		return len(m.snapshot.Addresses)
	case ViewOrders:
		return len(orderRows(m.snapshot.Orders))
	}
	return 0
}

func (m *Model) moveSelection(delta int) {
	if m.currentView == ViewActivity {
		if delta < 0 {
			m.activityViewport.ScrollUp(1)
		} else {
			m.activityViewport.ScrollDown(1)
		}
		return
	}
	n := m.rowCount(m.currentView)
	if n == 0 {
		return
	}
	sel := m.selected[m.currentView] + delta
	m.selected[m.currentView] = max(0, min(sel, n-1))
}

func (m *Model) clampSelection() {
	for v := View(0); v < viewCount; v++ {
		n := m.rowCount(v)
		if m.selected[v] >= n {
			m.selected[v] = max(0, n-1)
		}
	}
}

// handleTick refreshes the snapshot, expires toasts and reschedules.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.now = now
	m.expireToasts(now)

	cmds := []tea.Cmd{tickCmd(m.uiTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewActivity {
		cmds = append(cmds, readActivityCmd(m.logFile))
	}
	return m, tea.Batch(cmds...)
}

// contentHeight is the height left for the active view below the header and
// command bar.
func (m Model) contentHeight() int {
	return max(1, m.height-3)
}

// renderMain renders the header, command bar, active view and toasts.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString("\n")
		b.WriteString(toasts)
	}
	return b.String()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCart:
		return m.renderCart()
	case ViewAddresses:
		return m.renderAddresses()
	case ViewOrders:
		return m.renderOrders()
	case ViewActivity:
		return m.activityViewport.View()
	}
	return ""
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type activityMsg struct {
	entries []logtail.Entry
}

// noticeMsg shows a toast without any mutation behind it.
type noticeMsg struct {
	text  string
	level toastLevel
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readActivityCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, activityLines)
		if err != nil {
			return noticeMsg{text: "Could not read the activity log.", level: toastError}
		}
		return activityMsg{entries: entries}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}
