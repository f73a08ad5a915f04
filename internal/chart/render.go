package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var blocks = []rune(" ▁▂▃▄▅▆▇█")

// Render draws c as a bordered block sparkline plotWidth columns wide and
// plotHeight rows tall.
func (c *Chart) Render(p Palette, plotWidth, plotHeight int) string {
	if plotWidth < 4 {
		plotWidth = 4
	}
	if plotHeight < 1 {
		plotHeight = 1
	}

	legend := lipgloss.NewStyle().Foreground(c.kind.Color()).Render("━━") + " " +
		lipgloss.NewStyle().Foreground(p.Legend).Bold(true).Render(c.kind.Label())
	if last, ok := c.Last(); ok {
		legend += lipgloss.NewStyle().Foreground(p.Text).Render("  " + c.formatValue(last.Value))
	}

	values := make([]float64, 0, c.Len())
	for _, pt := range c.Points() {
		values = append(values, pt.Value)
	}
	rows := plot(values, c.AxisMax(), plotWidth, plotHeight)

	ticks := lipgloss.NewStyle().Foreground(p.Text)
	line := lipgloss.NewStyle().Foreground(c.kind.Color())
	top, bottom := c.formatValue(c.AxisMax()), c.formatValue(0)
	axisWidth := max(lipgloss.Width(top), lipgloss.Width(bottom))

	var b strings.Builder
	b.WriteString(legend)
	b.WriteByte('\n')
	for i, row := range rows {
		label := ""
		switch i {
		case 0:
			label = top
		case len(rows) - 1:
			label = bottom
		}
		b.WriteString(ticks.Render(fmt.Sprintf("%*s ┤", axisWidth, label)))
		b.WriteString(line.Render(row))
		b.WriteByte('\n')
	}
	b.WriteString(ticks.Render(strings.Repeat(" ", axisWidth+2) + c.timeAxis(plotWidth)))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Grid).
		Padding(0, 1).
		Render(b.String())
}

func (c *Chart) formatValue(v float64) string {
	if c.kind == Network {
		return fmt.Sprintf("%.2f KB", v)
	}
	return fmt.Sprintf("%.0f%%", v)
}

func (c *Chart) timeAxis(width int) string {
	pts := c.Points()
	if len(pts) == 0 {
		return strings.Repeat(" ", width)
	}
	if len(pts) > width {
		pts = pts[len(pts)-width:]
	}
	first := pts[0].Time.Format("15:04:05")
	last := pts[len(pts)-1].Time.Format("15:04:05")
	if len(pts) == 1 || width < len(first)+len(last)+1 {
		return fmt.Sprintf("%*s", width, last)
	}
	return first + strings.Repeat(" ", width-len(first)-len(last)) + last
}

// plot lays values out right-aligned in a width x height grid of block
// runes, scaled so that axisMax fills the full height.
func plot(values []float64, axisMax float64, width, height int) []string {
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	offset := width - len(values)
	steps := len(blocks) - 1
	for i, v := range values {
		if axisMax <= 0 || v <= 0 {
			continue
		}
		frac := v / axisMax
		if frac > 1 {
			frac = 1
		}
		units := int(frac*float64(height*steps) + 0.5)
		for r := 0; r < height; r++ {
			fill := units - r*steps
			switch {
			case fill >= steps:
				grid[height-1-r][offset+i] = blocks[steps]
			case fill > 0:
				grid[height-1-r][offset+i] = blocks[fill]
			}
		}
	}
	out := make([]string, height)
	for i, row := range grid {
		out[i] = string(row)
	}
	return out
}
