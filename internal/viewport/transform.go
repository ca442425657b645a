package viewport

import (
	"fmt"
	"strconv"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Transform maps scene coordinates to screen coordinates with a uniform
// scale followed by a translation: screen = scene*Scale + (TranslateX, TranslateY).
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
}

// Identity is the transform that leaves scene coordinates unchanged.
var Identity = Transform{Scale: 1}

// Matrix returns the transform as an affine matrix.
func (t Transform) Matrix() matrix.Matrix {
	return matrix.Matrix{t.Scale, 0, 0, t.Scale, t.TranslateX, t.TranslateY}
}

// ToScreen maps a scene point to screen coordinates.
func (t Transform) ToScreen(p vec.Vec2) vec.Vec2 {
	x, y := t.Matrix().Apply(p.X, p.Y)
	return vec.Vec2{X: x, Y: y}
}

// ToScene maps a screen point back into the scene.
func (t Transform) ToScene(p vec.Vec2) vec.Vec2 {
	if t.Scale == 0 {
		return p
	}
	return vec.Vec2{
		X: (p.X - t.TranslateX) / t.Scale,
		Y: (p.Y - t.TranslateY) / t.Scale,
	}
}

// String renders the transform the way an SVG transform attribute expects it.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s, %s) scale(%s)", ftoa(t.TranslateX), ftoa(t.TranslateY), ftoa(t.Scale))
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Rect is an axis-aligned rectangle in scene coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Empty reports whether r has no measurable area.
func (r Rect) Empty() bool {
	return !(r.Width > 0 && r.Height > 0)
}

// Center returns the midpoint of r.
func (r Rect) Center() vec.Vec2 {
	return vec.Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p vec.Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Union returns the smallest rectangle covering both r and o. Empty
// rectangles with zero origin are treated as absent.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.Width, o.X+o.Width)
	maxY := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// RectFromPoints returns the bounding box of pts.
func RectFromPoints(pts []vec.Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Size is the pixel size of the container the scene is shown in.
type Size struct {
	Width  float64
	Height float64
}

// Empty reports whether s cannot hold anything.
func (s Size) Empty() bool {
	return !(s.Width > 0 && s.Height > 0)
}

// centerOn returns the transform that places the centre of r in the middle
// of the container at the given scale.
func centerOn(r Rect, c Size, scale float64) Transform {
	mid := r.Center()
	return Transform{
		Scale:      scale,
		TranslateX: c.Width/2 - mid.X*scale,
		TranslateY: c.Height/2 - mid.Y*scale,
	}
}
