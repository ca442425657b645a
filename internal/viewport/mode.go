package viewport

import (
	"fmt"
	"strings"
)

// Direction of a zoom step.
type Direction int

const (
	ZoomIn Direction = iota
	ZoomOut
)

func (d Direction) String() string {
	if d == ZoomOut {
		return "out"
	}
	return "in"
}

// DirectionFromDelta maps a wheel delta to a zoom direction: scrolling
// down (positive delta) zooms out, anything else zooms in.
func DirectionFromDelta(dy float64) Direction {
	if dy > 0 {
		return ZoomOut
	}
	return ZoomIn
}

// ColorMode selects which region attribute drives the fill colour.
type ColorMode int

const (
	ColorNeutral ColorMode = iota
	ColorPresident
	ColorGovernment
	ColorAI
	ColorIdeology

	numColorModes
)

var colorModeNames = [...]string{
	ColorNeutral:    "neutral",
	ColorPresident:  "president",
	ColorGovernment: "government",
	ColorAI:         "ai",
	ColorIdeology:   "ideology",
}

func (m ColorMode) String() string {
	if m < 0 || m >= numColorModes {
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
	return colorModeNames[m]
}

// Next cycles to the following colour mode, wrapping around.
func (m ColorMode) Next() ColorMode {
	return (m + 1) % numColorModes
}

// ParseColorMode is the inverse of ColorMode.String.
func ParseColorMode(s string) (ColorMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range colorModeNames {
		if name == s {
			return ColorMode(i), nil
		}
	}
	return ColorNeutral, fmt.Errorf("unknown color mode %q", s)
}

// PresentationState is the purely visual state of a region.
type PresentationState int

const (
	StateDefault PresentationState = iota
	StateHovered
	StateSelected
)
