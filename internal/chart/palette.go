package chart

import "github.com/charmbracelet/lipgloss"

// Palette holds the theme-dependent chart colours.
type Palette struct {
	Dark   bool
	Text   lipgloss.Color
	Grid   lipgloss.Color
	Legend lipgloss.Color
}

var (
	darkPalette = Palette{
		Dark:   true,
		Text:   lipgloss.Color("#FFFFFF"),
		Grid:   lipgloss.Color("#3A3A3A"),
		Legend: lipgloss.Color("#FFFFFF"),
	}
	lightPalette = Palette{
		Text:   lipgloss.Color("#666666"),
		Grid:   lipgloss.Color("#E0E0E0"),
		Legend: lipgloss.Color("#666666"),
	}
)

func PaletteFor(dark bool) Palette {
	if dark {
		return darkPalette
	}
	return lightPalette
}
