package tui

import (
	"github.com/charmbracelet/lipgloss"

	"euromap/internal/regioninfo"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#60A5FA")
	warnFg    = lipgloss.Color("#F59E0B")
	upFg      = lipgloss.Color("#22C55E")
	downFg    = lipgloss.Color("#EF4444")
	borderCol = lipgloss.Color("#1F2937")

	strokeCol      = regioninfo.Stroke
	hoverStrokeCol = "#93C5FD"
	selectedStroke = "#FACC15"

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	boldStyle   = lipgloss.NewStyle().Bold(true)
	signalStyle = lipgloss.NewStyle().Foreground(warnFg).Bold(true)
	upStyle     = lipgloss.NewStyle().Foreground(upFg)
	downStyle   = lipgloss.NewStyle().Foreground(downFg)
)

// swatch is a two-cell colour sample followed by its label.
func swatch(color, label string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(color)).Render("  ") + " " + label
}

// attrStyle colours an attribute label with its party colour, if any.
func attrStyle(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
