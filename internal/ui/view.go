package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/chart"
	"github.com/Dicklesworthstone/procdash/internal/dashboard"
	"github.com/Dicklesworthstone/procdash/internal/model"
)

func (m *Model) View() string {
	base := lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.bodyView(),
		m.statusView(),
		m.help.ShortHelpView(keys.ShortHelp()),
	)

	var overlay string
	if text, ok := m.ctrl.Alert(); ok {
		overlay = m.styles.alert.Render(text + "\n\n" + m.styles.subtle.Render("enter to dismiss"))
	} else {
		overlay = m.modalView()
	}
	if overlay == "" {
		return base
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}

func (m *Model) headerView() string {
	title := m.styles.title.Render("procdash")

	var tabs []string
	for _, t := range dashboard.Tabs {
		style := m.styles.tab
		if t == m.ctrl.Tab() {
			style = m.styles.activeTab
		}
		tabs = append(tabs, style.Render(t.String()))
	}

	mode := m.styles.badge.Render("LIVE")
	if m.ctrl.Paused() {
		mode = m.styles.warnBadge.Render("PAUSED")
	}
	badges := []string{mode}
	if m.ctrl.Muted() {
		badges = append(badges, m.styles.warnBadge.Render("MUTED"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		title, "  ", strings.Join(tabs, ""), "  ", strings.Join(badges, " "))
}

func (m *Model) bodyView() string {
	switch m.ctrl.Tab() {
	case dashboard.TabGraphs:
		return m.graphsView()
	case dashboard.TabSystem:
		return m.systemView()
	}
	st := m.ctrl.Store()
	count := fmt.Sprintf("%d processes", st.Len())
	if st.Filtering() {
		count = fmt.Sprintf("%d of %d processes", st.ViewLen(), st.Len())
	}
	search := m.search.View()
	if m.mode != searchMode && m.search.Value() == "" {
		search = m.styles.subtle.Render("/ to search")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		search+"  "+m.styles.subtle.Render(count),
		m.table.View(),
	)
}

func (m *Model) graphsView() string {
	set := m.ctrl.Charts()
	pal := set.Palette()
	w := max(16, m.width/2-8)
	h := max(3, (m.height-10)/2-3)
	render := func(k chart.Kind) string { return set.Chart(k).Render(pal, w, h) }
	top := lipgloss.JoinHorizontal(lipgloss.Top, render(chart.CPU), render(chart.Memory))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, render(chart.Disk), render(chart.Network))
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func (m *Model) systemView() string {
	if _, ok := m.backend.(backend.SystemInfoer); !ok {
		return m.styles.subtle.Render("System information is only available in local mode")
	}
	info, err := m.ctrl.SystemInfo()
	if info == nil {
		if err != nil {
			return m.styles.errStatus.Render("System information unavailable: " + err.Error())
		}
		return m.styles.subtle.Render("Loading system information...")
	}
	rows := systemInfoRows(info)
	labelW := 0
	for _, r := range rows {
		labelW = max(labelW, lipgloss.Width(r[0]))
	}
	label := m.styles.heading.Width(labelW + 1).Align(lipgloss.Right)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = label.Render(r[0]+":") + " " + r[1]
	}
	return m.styles.modal.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render("System Information"), "", strings.Join(lines, "\n")))
}

func (m *Model) statusView() string {
	if text, isErr := m.ctrl.Status(); text != "" {
		if isErr {
			return m.styles.errStatus.Render(text)
		}
		return m.styles.status.Render(text)
	}
	if last := m.ctrl.LastUpdate(); !last.IsZero() {
		return m.styles.status.Render("Last updated " + last.Format("15:04:05"))
	}
	return m.styles.status.Render("Loading processes...")
}

func (m *Model) modalView() string {
	switch m.mode {
	case confirmKillMode:
		name := ""
		for _, r := range m.ctrl.Store().All() {
			if r.PID == m.killPID {
				name = " (" + r.Name + ")"
				break
			}
		}
		return m.styles.modal.Render(fmt.Sprintf("Kill process %d%s?\n\n%s",
			m.killPID, name, m.styles.subtle.Render("y to confirm, n to cancel")))
	case loadingMode:
		return m.styles.modal.Render(m.spinner.View() + " Analyzing...")
	case resultMode:
		return m.styles.modal.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.styles.heading.Render(m.resultTitle),
			m.viewport.View(),
			m.styles.subtle.Render("esc to close"),
		))
	case helpMode:
		return m.styles.modal.Render(m.styles.heading.Render("Keys") + "\n\n" + m.help.FullHelpView(keys.FullHelp()))
	}
	return ""
}

// systemInfoRows lays out info as label/value pairs in display order.
func systemInfoRows(info *model.SystemInfo) [][2]string {
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	count := func(n int) string {
		if n <= 0 {
			return "-"
		}
		return fmt.Sprint(n)
	}
	return [][2]string{
		{"System", orDash(info.OS)},
		{"Node Name", orDash(info.Node)},
		{"Release", orDash(info.Release)},
		{"Version", orDash(info.Version)},
		{"Machine", orDash(info.Machine)},
		{"Processor", orDash(info.Processor)},
		{"CPU Cores", count(info.PhysicalCores)},
		{"Logical CPUs", count(info.LogicalCores)},
		{"Total Memory", fmt.Sprintf("%d GB", info.TotalMemory>>30)},
		{"Disk Usage", fmt.Sprintf("%.1f%%", info.DiskPercent)},
	}
}

func processTitle(pid int) string { return fmt.Sprintf("Process Analysis (PID %d)", pid) }

func formatProcessAnalysis(a *model.ProcessAnalysis) string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	section(&b, "Analysis", a.Analysis)
	section(&b, "Anomalies", a.Anomalies)
	section(&b, "Recommendations", a.Recommendations)
	return strings.TrimRight(b.String(), "\n")
}

func formatSystemAnalysis(a *model.SystemAnalysis) string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	section(&b, "Analysis", a.Analysis)

	b.WriteString("Top CPU Processes\n")
	for _, p := range a.SystemData.TopCPU {
		fmt.Fprintf(&b, "  %-24s %6.1f%%\n", p.Name, p.CPUPercent)
	}
	b.WriteString("\nTop Memory Processes\n")
	for _, p := range a.SystemData.TopMemory {
		fmt.Fprintf(&b, "  %-24s %6.1f%%\n", p.Name, p.MemoryPercent)
	}
	return strings.TrimRight(b.String(), "\n")
}

func section(b *strings.Builder, title, body string) {
	b.WriteString(title)
	b.WriteByte('\n')
	if body = strings.TrimSpace(body); body == "" {
		body = "-"
	}
	b.WriteString(body)
	b.WriteString("\n\n")
}
