package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/dashboard"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.cfg.RefreshInterval)}
		if seq, ok := m.ctrl.RefreshTimerFired(); ok {
			cmds = append(cmds, m.fetchCmd(seq))
		}
		return m, tea.Batch(cmds...)

	case processesMsg:
		if msg.err != nil {
			m.ctrl.RefreshFailed(msg.seq, msg.err)
			return m, nil
		}
		if m.ctrl.RefreshSucceeded(msg.seq, msg.records, m.now()) {
			m.refreshTable()
		}
		return m, nil

	case sampleMsg:
		if !msg.ok {
			m.log.Info("sample stream closed")
			return m, nil
		}
		m.ctrl.PushSampleReceived(msg.sample, m.now())
		return m, waitSample(m.samples)

	case themeMsg:
		if !msg.ok {
			return m, nil
		}
		if msg.mode != m.ctrl.Theme() {
			m.ctrl.ApplyTheme(msg.mode)
			m.restyle()
		}
		return m, waitTheme(m.themes)

	case searchMsg:
		if msg.gen == m.searchGen {
			m.applySearch()
		}
		return m, nil

	case actionMsg:
		if msg.op == dashboard.OpKill {
			// The kill attempt ends the selection whatever the outcome.
			m.ctrl.Store().ClearSelection()
			m.refreshTable()
		}
		if msg.err != nil {
			m.ctrl.ActionFailed(msg.op, msg.err)
			return m, nil
		}
		m.ctrl.ActionSucceeded(msg.op, msg.message)
		if msg.op == dashboard.OpKill {
			return m, m.fetchCmd(m.ctrl.ManualRefresh())
		}
		return m, nil

	case analysisMsg:
		m.ctrl.EndAnalysis(msg.target)
		if msg.err != nil {
			m.ctrl.ActionFailed(msg.op, msg.err)
			if m.mode == loadingMode && !m.ctrl.Analyzing() {
				m.mode = normalMode
			}
			return m, nil
		}
		m.resultTitle = msg.title
		m.viewport.SetContent(msg.body)
		m.viewport.GotoTop()
		m.mode = resultMode
		return m, nil

	case exportMsg:
		if msg.err != nil {
			m.ctrl.ActionFailed(dashboard.OpExport, msg.err)
			return m, nil
		}
		m.log.Info("exported processes", "path", msg.path, "count", msg.count)
		m.ctrl.SetStatus(fmt.Sprintf("Exported %d processes to %s", msg.count, msg.path), false)
		return m, nil

	case systemInfoMsg:
		m.ctrl.SetSystemInfo(msg.info, msg.err)
		return m, nil

	case spinner.TickMsg:
		if m.mode != loadingMode {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.ctxCancel()
		return m, tea.Quit
	}
	if _, ok := m.ctrl.Alert(); ok {
		switch msg.String() {
		case "enter", "esc", " ", "q":
			m.ctrl.DismissAlert()
		}
		return m, nil
	}

	switch m.mode {
	case searchMode:
		return m.handleSearchKey(msg)
	case confirmKillMode:
		return m.handleConfirmKill(msg)
	case loadingMode:
		return m, nil
	case resultMode:
		switch msg.String() {
		case "esc", "enter", "q":
			m.mode = normalMode
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case helpMode:
		m.mode = normalMode
		return m, nil
	}
	return m.handleNormalKey(msg)
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.ctxCancel()
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.mode = helpMode

	case key.Matches(msg, keys.Tab):
		m.ctrl.NextTab()
		if m.ctrl.Tab() == dashboard.TabSystem {
			return m, m.systemInfoCmd()
		}

	case key.Matches(msg, keys.Search):
		m.ctrl.SetTab(dashboard.TabProcesses)
		m.mode = searchMode
		return m, m.search.Focus()

	case msg.String() == "esc":
		if m.search.Value() != "" {
			m.clearSearch()
		}

	case key.Matches(msg, keys.Select):
		if pid, ok := rowPID(m.table.SelectedRow()); ok {
			m.ctrl.Select(pid)
			m.refreshTable()
		}

	case key.Matches(msg, keys.Sort):
		if err := m.ctrl.SortBy(sortKeys[msg.String()]); err == nil {
			m.refreshTable()
		}

	case key.Matches(msg, keys.Refresh):
		m.ctrl.SetStatus("Refreshing...", false)
		return m, m.fetchCmd(m.ctrl.ManualRefresh())

	case key.Matches(msg, keys.Pause):
		m.ctrl.ToggleUpdates()

	case key.Matches(msg, keys.Mute):
		m.ctrl.ToggleAlerts()

	case key.Matches(msg, keys.Theme):
		mode := m.ctrl.ToggleTheme()
		m.restyle()
		return m, m.saveThemeCmd(mode)

	case key.Matches(msg, keys.Export):
		return m, m.exportCmd()

	case key.Matches(msg, keys.Kill):
		pid, err := m.ctrl.RequireSelection()
		if err != nil {
			return m, nil
		}
		m.killPID = pid
		m.mode = confirmKillMode

	case key.Matches(msg, keys.Raise), key.Matches(msg, keys.Lower):
		pid, err := m.ctrl.RequireSelection()
		if err != nil {
			return m, nil
		}
		action := backend.Raise
		if key.Matches(msg, keys.Lower) {
			action = backend.Lower
		}
		return m, m.priorityCmd(pid, action)

	case key.Matches(msg, keys.Analyze):
		pid, err := m.ctrl.RequireSelection()
		if err != nil {
			return m, nil
		}
		if err = m.ctrl.BeginAnalysis(dashboard.ProcessTarget(pid)); err != nil {
			return m, nil
		}
		m.mode = loadingMode
		return m, tea.Batch(m.spinner.Tick, m.analyzeProcessCmd(pid))

	case key.Matches(msg, keys.AnalyzeSystem):
		if err := m.ctrl.BeginAnalysis(dashboard.SystemTarget); err != nil {
			return m, nil
		}
		m.mode = loadingMode
		return m, tea.Batch(m.spinner.Tick, m.analyzeSystemCmd())

	default:
		if m.ctrl.Tab() == dashboard.TabProcesses {
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.clearSearch()
		m.mode = normalMode
		m.search.Blur()
		return m, nil
	case "enter", "tab", "down", "up":
		m.mode = normalMode
		m.search.Blur()
		m.applySearch()
		return m, nil
	}

	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == prev {
		return m, cmd
	}
	m.searchGen++
	if m.cfg.SearchDebounce <= 0 {
		m.applySearch()
		return m, cmd
	}
	gen := m.searchGen
	debounce := tea.Tick(m.cfg.SearchDebounce, func(time.Time) tea.Msg { return searchMsg{gen: gen} })
	return m, tea.Batch(cmd, debounce)
}

func (m *Model) handleConfirmKill(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = normalMode
		return m, m.killCmd(m.killPID)
	case "n", "N", "esc", "q":
		m.mode = normalMode
		m.ctrl.SetStatus("Kill cancelled", false)
	}
	return m, nil
}

// applySearch pushes the input value into the store.
func (m *Model) applySearch() {
	m.ctrl.SetFilter(m.search.Value())
	m.refreshTable()
}

// clearSearch empties the input and the filter at once, dropping any pending
// debounce.
func (m *Model) clearSearch() {
	m.searchGen++
	m.search.SetValue("")
	m.applySearch()
}

func (m *Model) refreshTable() {
	st := m.ctrl.Store()
	pid, ok := st.Selected()
	m.table.SetColumns(Columns(st.Sort(), m.width))
	m.table.SetRows(Rows(st.View(), pid, ok))
	if n := len(st.View()); m.table.Cursor() >= n {
		m.table.SetCursor(max(0, n-1))
	}
}

func (m *Model) restyle() {
	m.styles = stylesFor(m.ctrl.Theme().IsDark())
	m.table.SetStyles(m.styles.table)
}

func (m *Model) resize() {
	m.table.SetHeight(max(3, m.height-9))
	m.table.SetColumns(Columns(m.ctrl.Store().Sort(), m.width))
	m.viewport.Width = max(20, m.width*2/3)
	m.viewport.Height = max(5, m.height*2/3)
	m.help.Width = m.width
}
