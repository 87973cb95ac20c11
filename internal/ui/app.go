package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/coloringbook/internal/colorbook"
	"github.com/five82/coloringbook/internal/logtail"
	"github.com/five82/coloringbook/internal/prefs"
	"github.com/five82/coloringbook/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewGallery View = iota
	ViewGenerate
	ViewDetail
	ViewLogs
	ViewSettings
)

// cycleOrder is the tab order. Detail is only reachable from the gallery.
var cycleOrder = []View{ViewGallery, ViewGenerate, ViewLogs, ViewSettings}

func (v View) String() string {
	switch v {
	case ViewGallery:
		return "Gallery"
	case ViewGenerate:
		return "Generate"
	case ViewDetail:
		return "Detail"
	case ViewLogs:
		return "Logs"
	case ViewSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

const (
	defaultTick   = 250 * time.Millisecond
	chromeHeight  = 3 // header, command bar, status line
	minPreviewRow = 4
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Gallery    *state.Gallery
	Generation *state.Generation
	Health     *state.Health
	Fetcher    colorbook.ByteFetcher
	Prober     colorbook.HealthChecker
	Runner     state.Runner
	Logs       *logtail.Ring
	Logger     *slog.Logger
	PrintDir   string
	Tick       time.Duration
	ThemeName  string
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Dependencies
	ctx        context.Context
	gallery    *state.Gallery
	generation *state.Generation
	health     *state.Health
	fetcher    colorbook.ByteFetcher
	prober     colorbook.HealthChecker
	runner     state.Runner
	logs       *logtail.Ring
	logger     *slog.Logger
	printDir   string
	prefsPath  string
	tick       time.Duration
	keys       keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Snapshots, refreshed on every tick and task completion
	gallerySnap state.GallerySnapshot
	genSnap     state.GenerationSnapshot
	healthSnap  state.HealthSnapshot
	detailSnap  state.DetailSnapshot

	// Gallery
	selectedRow int
	searchInput textinput.Model

	// Generate
	promptInput textinput.Model
	spinner     spinner.Model

	// Detail
	detail         *state.Detail
	detailViewport viewport.Model
	previewKey     string
	previewCache   string

	// Logs
	logViewport viewport.Model
	logVersion  uint64
	logFollow   bool

	// Settings
	serverInput textinput.Model

	// One-line feedback under the content
	flash        string
	flashIsError bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:         ctx,
		gallery:     opts.Gallery,
		generation:  opts.Generation,
		health:      opts.Health,
		fetcher:     opts.Fetcher,
		prober:      opts.Prober,
		runner:      opts.Runner,
		logs:        opts.Logs,
		logger:      logger.With("component", "ui"),
		printDir:    opts.PrintDir,
		prefsPath:   prefsPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewGallery,
		searchInput: newInput("search titles and prompts", 200),
		promptInput: newInput("a friendly dragon reading a book", 500),
		serverInput: newInput(colorbook.DefaultServerURL, 300),
		spinner:     sp,
		logFollow:   true,
	}
	m.applyTheme()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "› "
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.gallery != nil {
		cmds = append(cmds, waitCmd("load", m.gallery.LoadImages()))
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
			m.detailViewport = viewport.New(m.width, m.contentHeight())
			m.logViewport = viewport.New(m.width, m.contentHeight())
		}
		m.ready = true
		m.resize()
		m.refresh()
		return m, nil

	case tickMsg:
		m.refresh()
		if m.genSnap.IsGenerating || m.gallerySnap.Busy() || m.detailSnap.IsLoading {
			m.spinner, _ = m.spinner.Update(spinner.TickMsg{Time: time.Time(msg)})
		}
		return m, tickCmd(m.tick)

	case taskDoneMsg:
		m.refresh()
		return m, nil

	case printDoneMsg:
		m.refresh()
		if msg.err != nil {
			m.setFlash("Print page failed: "+msg.err.Error(), true)
		} else {
			m.setFlash("Saved print page to "+msg.path, false)
		}
		return m, nil

	case healthMsg:
		m.refresh()
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.setFlash("Could not save preferences: "+msg.err.Error(), true)
		}
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

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	var body string
	switch m.currentView {
	case ViewGallery:
		body = m.renderGallery()
	case ViewGenerate:
		body = m.renderGenerate()
	case ViewDetail:
		body = m.renderDetail()
	case ViewLogs:
		body = m.renderLogs()
	case ViewSettings:
		body = m.renderSettings()
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.contentHeight()).
		MaxHeight(m.contentHeight()).
		Render(body)
}

func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	if m.flash == "" {
		return ""
	}
	style := styles.SuccessText
	if m.flashIsError {
		style = styles.DangerText
	}
	return style.Render(truncate(m.flash, max(m.width, 1)))
}

func (m Model) contentHeight() int {
	h := m.height - chromeHeight
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) resize() {
	h := m.contentHeight()
	m.detailViewport.Width = m.width
	m.detailViewport.Height = h
	m.logViewport.Width = m.width
	m.logViewport.Height = h
	m.searchInput.Width = max(m.width-6, 10)
	m.promptInput.Width = max(m.width-6, 10)
	m.serverInput.Width = max(m.width-6, 10)
	m.previewKey = ""
}

// refresh copies the latest state snapshots into the model.
func (m *Model) refresh() {
	if m.gallery != nil {
		m.gallerySnap = m.gallery.Snapshot()
	}
	if m.generation != nil {
		m.genSnap = m.generation.Snapshot()
	}
	if m.health != nil {
		m.healthSnap = m.health.Snapshot()
	}
	if m.detail != nil {
		m.detailSnap = m.detail.Snapshot()
	}

	if n := len(m.gallerySnap.Images); m.selectedRow >= n {
		m.selectedRow = max(n-1, 0)
	}

	m.updateLogViewport()
	if m.currentView == ViewDetail {
		m.updateDetailViewport()
	}
}

func (m *Model) setFlash(text string, isError bool) {
	m.flash = text
	m.flashIsError = isError
}

func (m *Model) applyTheme() {
	styles := m.theme.Styles()
	for _, in := range []*textinput.Model{&m.searchInput, &m.promptInput, &m.serverInput} {
		in.PromptStyle = styles.AccentText
		in.TextStyle = styles.Text
		in.PlaceholderStyle = styles.FaintText
	}
	m.spinner.Style = styles.AccentText
	m.previewKey = ""
}

// switchView moves to v, releasing whatever the current view holds.
func (m *Model) switchView(v View) {
	if m.currentView == v {
		return
	}
	if m.currentView == ViewDetail {
		m.closeDetail()
	}
	m.searchInput.Blur()
	m.promptInput.Blur()
	m.serverInput.Blur()

	switch v {
	case ViewGenerate:
		m.promptInput.Focus()
	case ViewSettings:
		if m.gallery != nil {
			m.serverInput.SetValue(m.gallery.ServerURL())
		}
		m.serverInput.CursorEnd()
		m.serverInput.Focus()
	case ViewLogs:
		if m.logFollow {
			m.logViewport.GotoBottom()
		}
	}
	m.currentView = v
	m.flash = ""
}

func (m *Model) cycleView(step int) {
	idx := 0
	for i, v := range cycleOrder {
		if v == m.currentView {
			idx = i
			break
		}
	}
	next := (idx + step + len(cycleOrder)) % len(cycleOrder)
	m.switchView(cycleOrder[next])
}

func (m *Model) closeDetail() {
	if m.detail != nil {
		m.detail.Close()
		m.detail = nil
	}
	m.detailSnap = state.DetailSnapshot{}
	m.previewKey = ""
	m.previewCache = ""
}

func (m *Model) shutdown() {
	m.closeDetail()
	if m.generation != nil {
		m.generation.CancelGeneration()
	}
}

// Messages

type tickMsg time.Time

type taskDoneMsg struct {
	op string
}

type printDoneMsg struct {
	path string
	err  error
}

type healthMsg struct{}

type prefsSavedMsg struct {
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitCmd blocks on task off the UI loop and reports completion.
func waitCmd(op string, task state.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	return func() tea.Msg {
		_ = task.Wait()
		return taskDoneMsg{op: op}
	}
}

func probeCmd(ctx context.Context, prober colorbook.HealthChecker, health *state.Health, baseURL string) tea.Cmd {
	if prober == nil || health == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := prober.Health(ctx, baseURL)
		if err != nil {
			health.Update(nil, err)
		} else {
			health.Update(&status, nil)
		}
		return healthMsg{}
	}
}

// savePrefsCmd rewrites the prefs file with mutate applied to its current contents.
func savePrefsCmd(path string, mutate func(*prefs.Prefs)) tea.Cmd {
	return func() tea.Msg {
		p, _ := prefs.Load(path)
		mutate(&p)
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	ctx := m.ctx
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
