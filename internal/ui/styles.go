package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title     lipgloss.Style
	subtle    lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	badge     lipgloss.Style
	warnBadge lipgloss.Style
	status    lipgloss.Style
	errStatus lipgloss.Style
	modal     lipgloss.Style
	alert     lipgloss.Style
	heading   lipgloss.Style
	table     table.Styles
}

func stylesFor(dark bool) styles {
	accent, text, muted, border := lipgloss.Color("45"), lipgloss.Color("252"), lipgloss.Color("244"), lipgloss.Color("60")
	if !dark {
		accent, text, muted, border = lipgloss.Color("25"), lipgloss.Color("235"), lipgloss.Color("243"), lipgloss.Color("250")
	}
	red := lipgloss.Color("203")

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(border).
		BorderBottom(true).
		Bold(true).
		Foreground(accent)
	ts.Cell = ts.Cell.Foreground(text)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		subtle:    lipgloss.NewStyle().Foreground(muted),
		tab:       lipgloss.NewStyle().Padding(0, 2).Foreground(muted),
		activeTab: lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(accent).Underline(true),
		badge:     lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")),
		warnBadge: lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")),
		status:    lipgloss.NewStyle().Foreground(muted),
		errStatus: lipgloss.NewStyle().Foreground(red).Bold(true),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2),
		alert: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(red).
			Padding(1, 2),
		heading: lipgloss.NewStyle().Bold(true).Foreground(accent),
		table:   ts,
	}
}
