// Package chart keeps rolling metric series and renders them as terminal
// sparklines.
package chart

import (
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

// Kind identifies one of the four system metrics.
type Kind int

const (
	CPU Kind = iota
	Memory
	Disk
	Network
)

// Kinds lists the charts in display order.
var Kinds = []Kind{CPU, Memory, Disk, Network}

func (k Kind) Label() string {
	switch k {
	case CPU:
		return "CPU Usage (%)"
	case Memory:
		return "Memory Usage (%)"
	case Disk:
		return "Disk Usage (%)"
	case Network:
		return "Network (KB)"
	}
	return "unknown"
}

// Color is the series colour, independent of theme.
func (k Kind) Color() lipgloss.Color {
	switch k {
	case CPU:
		return lipgloss.Color("#FF6384")
	case Memory:
		return lipgloss.Color("#36A2EB")
	case Disk:
		return lipgloss.Color("#4BC0C0")
	case Network:
		return lipgloss.Color("#9966FF")
	}
	return lipgloss.Color("7")
}

// Bounded reports whether the y axis is fixed to [0,100].
func (k Kind) Bounded() bool { return k != Network }

// Scale converts a raw sample value into the stored chart value: percentages
// keep one decimal, network bytes become kilobytes with two decimals.
func (k Kind) Scale(raw float64) float64 {
	if k == Network {
		return round(raw/1024, 2)
	}
	return round(raw, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Chart is one metric series.
type Chart struct {
	kind Kind
	buf  *Buffer
}

func New(kind Kind) *Chart {
	return &Chart{kind: kind, buf: NewBuffer(Capacity)}
}

// Append scales value and pushes it onto the series.
func (c *Chart) Append(ts time.Time, value float64) {
	c.buf.Append(Point{Time: ts, Value: c.kind.Scale(value)})
}

func (c *Chart) Kind() Kind          { return c.kind }
func (c *Chart) Points() []Point     { return c.buf.Points() }
func (c *Chart) Len() int            { return c.buf.Len() }
func (c *Chart) Last() (Point, bool) { return c.buf.Last() }

// AxisMax is the top of the y axis.
func (c *Chart) AxisMax() float64 {
	if c.kind.Bounded() {
		return 100
	}
	return c.buf.Max()
}

// Set holds the four system charts and the palette they share.
type Set struct {
	charts  [4]*Chart
	palette Palette
}

func NewSet(dark bool) *Set {
	s := &Set{palette: PaletteFor(dark)}
	for _, k := range Kinds {
		s.charts[k] = New(k)
	}
	return s
}

// Append pushes every metric present in sample. now is used when the sample
// carries no timestamp.
func (s *Set) Append(sample model.MetricSample, now time.Time) {
	ts := sample.Time
	if ts.IsZero() {
		ts = now
	}
	values := [4]*float64{sample.CPU, sample.Memory, sample.Disk, sample.Network}
	for k, v := range values {
		if v != nil {
			s.charts[k].Append(ts, *v)
		}
	}
}

// Retheme swaps the palette shared by every chart.
func (s *Set) Retheme(dark bool) {
	s.palette = PaletteFor(dark)
}

func (s *Set) Palette() Palette    { return s.palette }
func (s *Set) Chart(k Kind) *Chart { return s.charts[k] }
