package regioninfo

import "euromap/internal/viewport"

// Map palette.
const (
	NeutralFill = "#0f172a"
	HoverFill   = "#1e293b"
	Stroke      = "#2563eb"
	Background  = "#0b0f14"
)

// Ideology scale.
const (
	DarkRed   = "#991b1b"
	LightRed  = "#f87171"
	Gray      = "#9ca3af"
	LightBlue = "#60a5fa"
	DarkBlue  = "#1e3a8a"
)

// IdeologyColor maps a left-right score onto the five-bucket scale. A
// missing score gets the neutral fill.
func IdeologyColor(v float64, ok bool) string {
	switch {
	case !ok:
		return NeutralFill
	case v <= -0.5:
		return DarkRed
	case v < -0.05:
		return LightRed
	case v <= 0.05:
		return Gray
	case v < 0.5:
		return LightBlue
	default:
		return DarkBlue
	}
}

// Fill returns the fill colour of region code under mode.
func (p *Provider) Fill(code string, mode viewport.ColorMode) string {
	switch mode {
	case viewport.ColorIdeology:
		return IdeologyColor(p.Ideology(code))
	case viewport.ColorPresident, viewport.ColorGovernment, viewport.ColorAI:
		info, _ := p.Lookup(code)
		if a, ok := info.Attribute(mode); ok && a.Color != "" {
			return a.Color
		}
	}
	return NeutralFill
}

// LegendEntry is one swatch of a legend.
type LegendEntry struct {
	Color string
	Label string
}

// Legend groups shown next to the map.
var (
	ParliamentGroups = []LegendEntry{
		{"#0b1f3a", "ID / ECR / ESN / PfE"},
		{"#1d4ed8", "EPP"},
		{"#38bdf8", "Renew"},
		{"#b91c1c", "S&D (Socialists)"},
		{"#15803d", "Greens / EFA"},
		{"#7f1d1d", "The Left"},
	}
	AIAlignment = []LegendEntry{
		{"#7c3aed", "Pro-EU"},
		{"#9ca3af", "Mixed"},
		{"#ea580c", "Anti-EU"},
	}
	IdeologyScale = []LegendEntry{
		{DarkRed, "Left (≤ -0.5)"},
		{LightRed, "Centre-left"},
		{Gray, "Centre"},
		{LightBlue, "Centre-right"},
		{DarkBlue, "Right (≥ 0.5)"},
	}
)

// Legend returns the swatches that explain the fills under mode. The
// neutral mode shows both political legends.
func Legend(mode viewport.ColorMode) []LegendEntry {
	switch mode {
	case viewport.ColorPresident, viewport.ColorGovernment:
		return ParliamentGroups
	case viewport.ColorAI:
		return AIAlignment
	case viewport.ColorIdeology:
		return IdeologyScale
	default:
		return append(append([]LegendEntry(nil), ParliamentGroups...), AIAlignment...)
	}
}
