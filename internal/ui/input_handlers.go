package ui

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/coloringbook/internal/prefs"
	"github.com/five82/coloringbook/internal/printpage"
	"github.com/five82/coloringbook/internal/state"
)

// handleKey routes keyboard input. Focused text inputs see keys before the
// global bindings so typing "q" into a prompt does not quit.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.shutdown()
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case m.currentView == ViewGallery && m.searchInput.Focused():
		return m.handleSearchInput(msg)
	case m.currentView == ViewGenerate:
		return m.handleGenerateKey(msg)
	case m.currentView == ViewSettings:
		return m.handleSettingsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		return m, m.cycleTheme()
	case key.Matches(msg, m.keys.Tab):
		m.cycleView(1)
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.cycleView(-1)
		return m, nil
	case key.Matches(msg, m.keys.ViewGallery):
		m.switchView(ViewGallery)
		return m, nil
	case key.Matches(msg, m.keys.ViewGenerate):
		m.switchView(ViewGenerate)
		return m, nil
	case key.Matches(msg, m.keys.ViewLogs):
		m.switchView(ViewLogs)
		return m, nil
	case key.Matches(msg, m.keys.ViewSettings):
		m.switchView(ViewSettings)
		return m, nil
	}

	switch m.currentView {
	case ViewGallery:
		return m.handleGalleryKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) handleGalleryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.gallerySnap.Images)
	page := max(m.galleryRows(), 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = max(count-1, 0)
	case key.Matches(msg, m.keys.PageDown):
		m.selectedRow = min(m.selectedRow+page, max(count-1, 0))
	case key.Matches(msg, m.keys.PageUp):
		m.selectedRow = max(m.selectedRow-page, 0)
	case key.Matches(msg, m.keys.Open):
		return m.openDetail()
	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue(m.gallerySnap.SearchQuery)
		m.searchInput.CursorEnd()
		m.searchInput.Focus()
	case key.Matches(msg, m.keys.Reload):
		m.flash = ""
		cmd := waitCmd("load", m.gallery.LoadImages())
		m.refresh()
		return m, cmd
	case key.Matches(msg, m.keys.ClearSearch):
		m.searchInput.SetValue("")
		cmd := waitCmd("clear", m.gallery.ClearSearch())
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searchInput.Blur()
		m.selectedRow = 0
		cmd := waitCmd("search", m.gallery.SearchImages())
		m.refresh()
		return m, cmd
	}

	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	task := m.gallery.UpdateSearchQuery(m.searchInput.Value())
	m.refresh()
	return m, tea.Batch(inputCmd, waitCmd("query", task))
}

func (m Model) openDetail() (tea.Model, tea.Cmd) {
	images := m.gallerySnap.Images
	if len(images) == 0 || m.selectedRow >= len(images) {
		return m, nil
	}
	record := images[m.selectedRow]

	m.closeDetail()
	m.detail = state.NewDetail(state.DetailOptions{
		Context:  m.ctx,
		Fetcher:  m.fetcher,
		Runner:   m.runner,
		Logger:   m.logger,
		PrintDPI: printpage.DefaultDPI,
	})
	task := m.detail.LoadImage(record, m.gallery.ServerURL())
	m.currentView = ViewDetail
	m.flash = ""
	m.detailViewport.GotoTop()
	m.refresh()
	return m, waitCmd("detail", task)
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.switchView(ViewGallery)
		return m, nil
	case key.Matches(msg, m.keys.Print):
		if m.detail == nil {
			return m, nil
		}
		d, dir := m.detail, m.printDir
		return m, func() tea.Msg {
			path, err := d.PrintPage(dir)
			return printDoneMsg{path: path, err: err}
		}
	case key.Matches(msg, m.keys.DismissError):
		if m.detail != nil {
			m.detail.DismissPrintError()
		}
		m.flash = ""
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m Model) handleGenerateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab):
		m.cycleView(1)
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.cycleView(-1)
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		if m.genSnap.IsGenerating {
			m.generation.CancelGeneration()
			m.setFlash("Generation cancelled", false)
			m.refresh()
			return m, nil
		}
		m.switchView(ViewGallery)
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		job, err := m.generation.GenerateImage()
		if err != nil {
			m.setFlash("Type a prompt first", true)
			return m, nil
		}
		m.flash = ""
		m.refresh()
		return m, waitCmd("generate", job)
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	m.generation.UpdatePrompt(m.promptInput.Value())
	m.refresh()
	return m, cmd
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab):
		m.cycleView(1)
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.cycleView(-1)
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.switchView(ViewGallery)
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		return m.applyServerURL()
	}

	var cmd tea.Cmd
	m.serverInput, cmd = m.serverInput.Update(msg)
	return m, cmd
}

// applyServerURL switches every state container to the URL in the settings
// input, persists it and re-fetches.
func (m Model) applyServerURL() (tea.Model, tea.Cmd) {
	raw := strings.TrimRight(strings.TrimSpace(m.serverInput.Value()), "/")
	if !validServerURL(raw) {
		m.setFlash("Invalid server URL", true)
		return m, nil
	}

	m.gallery.SetServerURL(raw)
	if m.generation != nil {
		m.generation.SetServerURL(raw)
	}
	if m.health != nil {
		m.health.Reset()
	}
	m.serverInput.SetValue(raw)
	m.logger.Info("server url changed", "url", raw)
	m.setFlash("Server set to "+raw, false)

	load := waitCmd("load", m.gallery.LoadImages())
	m.refresh()
	return m, tea.Batch(
		load,
		probeCmd(m.ctx, m.prober, m.health, raw),
		savePrefsCmd(m.prefsPath, func(p *prefs.Prefs) { p.ServerURL = raw }),
	)
}

func (m *Model) cycleTheme() tea.Cmd {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.applyTheme()
	name := m.theme.Name
	return savePrefsCmd(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name })
}

func validServerURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
