package tui

import (
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"

	"euromap/internal/regioninfo"
	"euromap/internal/scene"
	"euromap/internal/viewport"
)

// pointerMicro maps a cell inside the map area to the micro-pixel at its
// centre, the unit the controller works in.
func pointerMicro(cx, cy int) (float64, float64) {
	return float64(cx*2 + 1), float64(cy*4 + 2)
}

// containerSize is the map area in micro-pixels.
func containerSize(w, h int) viewport.Size {
	return viewport.Size{Width: float64(w * 2), Height: float64(h * 4)}
}

// paintOrder returns the regions largest first so that enclaves and small
// states end up on top.
func paintOrder(s *scene.Scene) []*scene.Region {
	regions := make([]*scene.Region, 0, s.Len())
	for _, code := range s.Codes() {
		regions = append(regions, s.Regions[code])
	}
	sort.SliceStable(regions, func(i, j int) bool {
		ai := regions[i].BBox.Width * regions[i].BBox.Height
		aj := regions[j].BBox.Width * regions[j].BBox.Height
		return ai > aj
	})
	return regions
}

// renderMap rasterises the scene into a w x h cell canvas through the
// controller's transform. Fills are cell backgrounds, outlines braille dots.
func (m Model) renderMap(w, h int) *canvas {
	cv := newCanvas(w, h)
	if m.scene == nil || w <= 0 || h <= 0 {
		return cv
	}
	t := m.ctrl.Transform()
	mode := m.ctrl.ColorMode()
	regions := paintOrder(m.scene)

	project := func(r *scene.Region) [][]vec.Vec2 {
		rings := make([][]vec.Vec2, 0, len(r.Rings))
		for _, ring := range r.Rings {
			if len(ring) < 3 {
				continue
			}
			out := make([]vec.Vec2, len(ring))
			for i, p := range ring {
				out[i] = t.ToScreen(p)
			}
			rings = append(rings, out)
		}
		return rings
	}

	// fill: even-odd spans over all rings, sampled at each cell's centre
	screen := make(map[string][][]vec.Vec2, len(regions))
	for _, r := range regions {
		rings := project(r)
		screen[r.Code] = rings
		fill := m.fillColor(r.Code, mode)
		for cy := 0; cy < h; cy++ {
			_, sy := pointerMicro(0, cy)
			xs := crossings(rings, sy)
			for i := 0; i+1 < len(xs); i += 2 {
				c0 := max(0, int(math.Ceil((xs[i]-1)/2)))
				c1 := min(w-1, int(math.Floor((xs[i+1]-1)/2)))
				for cx := c0; cx <= c1; cx++ {
					cv.fillCell(cx, cy, fill)
				}
			}
		}
	}

	// outlines, with hover and selection drawn last
	selected, _ := m.ctrl.Selected()
	hovered := m.ctrl.Hovered()
	mw, mh := float64(w*2), float64(h*4)
	drawOutline := func(code, color string) {
		for _, ring := range screen[code] {
			for i := range ring {
				a, b := ring[i], ring[(i+1)%len(ring)]
				if (a.X < 0 && b.X < 0) || (a.X >= mw && b.X >= mw) ||
					(a.Y < 0 && b.Y < 0) || (a.Y >= mh && b.Y >= mh) {
					continue
				}
				cv.drawLine(round(a.X), round(a.Y), round(b.X), round(b.Y), color)
			}
		}
	}
	for _, r := range regions {
		if r.Code != selected && r.Code != hovered {
			drawOutline(r.Code, strokeCol)
		}
	}
	if hovered != "" && hovered != selected {
		drawOutline(hovered, hoverStrokeCol)
	}
	if selected != "" {
		drawOutline(selected, selectedStroke)
	}
	return cv
}

// fillColor is the region fill under mode. In the neutral mode the hovered
// region is lifted the way the web map did it.
func (m Model) fillColor(code string, mode viewport.ColorMode) string {
	if mode == viewport.ColorNeutral && m.ctrl.PresentationOf(code) != viewport.StateDefault {
		return regioninfo.HoverFill
	}
	return m.info.Fill(code, mode)
}

// crossings returns the sorted x positions where the horizontal line at y
// crosses the rings' edges.
func crossings(rings [][]vec.Vec2, y float64) []float64 {
	var xs []float64
	for _, ring := range rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, b := ring[i], ring[j]
			if (a.Y > y) == (b.Y > y) {
				continue
			}
			xs = append(xs, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
	}
	sort.Float64s(xs)
	return xs
}

func round(v float64) int {
	v = min(max(v, -1e6), 1e6)
	return int(math.Round(v))
}
