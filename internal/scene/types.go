// Package scene loads vector maps into addressable regions with outlines
// and bounding boxes in scene coordinates.
package scene

import (
	"errors"
	"sort"
	"strings"

	"seehuhn.de/go/geom/vec"

	"euromap/internal/viewport"
)

// ErrNoRegions is returned when a document parses but holds nothing that
// can be addressed by a region code.
var ErrNoRegions = errors.New("scene: no addressable regions")

// Region is one addressable shape, typically a country.
type Region struct {
	Code  string
	Name  string
	Rings [][]vec.Vec2 // closed outlines; holes and islands are further rings
	BBox  viewport.Rect
}

// Contains reports whether p lies inside the region (even-odd rule over all rings).
func (r *Region) Contains(p vec.Vec2) bool {
	if !r.BBox.Contains(p) {
		return false
	}
	in := false
	for _, ring := range r.Rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, b := ring[i], ring[j]
			if (a.Y > p.Y) != (b.Y > p.Y) &&
				p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
				in = !in
			}
		}
	}
	return in
}

// Scene is a loaded map: its regions and their overall bounding box.
type Scene struct {
	BBox    viewport.Rect
	Regions map[string]*Region
	codes   []string
}

func newScene() *Scene {
	return &Scene{Regions: map[string]*Region{}}
}

// add merges rings into the region with the given code, creating it on first use.
func (s *Scene) add(code, name string, rings [][]vec.Vec2) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return
	}
	var kept [][]vec.Vec2
	for _, ring := range rings {
		if len(ring) >= 3 {
			kept = append(kept, ring)
		}
	}
	if len(kept) == 0 {
		return
	}
	r, ok := s.Regions[code]
	if !ok {
		r = &Region{Code: code}
		s.Regions[code] = r
		s.codes = append(s.codes, code)
	}
	if r.Name == "" {
		r.Name = name
	}
	for _, ring := range kept {
		r.Rings = append(r.Rings, ring)
		r.BBox = r.BBox.Union(viewport.RectFromPoints(ring))
	}
	s.BBox = s.BBox.Union(r.BBox)
}

func (s *Scene) finish() (*Scene, error) {
	if len(s.Regions) == 0 {
		return nil, ErrNoRegions
	}
	sort.Strings(s.codes)
	return s, nil
}

// Lookup returns the region with the given code.
func (s *Scene) Lookup(code string) (*Region, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.Regions[strings.ToLower(code)]
	return r, ok
}

// Codes returns all region codes in sorted order.
func (s *Scene) Codes() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.codes...)
}

// Len returns the number of regions.
func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Regions)
}

// HitTest returns the region under scene point p. When outlines overlap
// the region with the smallest bounding box wins, so enclaves stay clickable.
func (s *Scene) HitTest(p vec.Vec2) (string, bool) {
	if s == nil {
		return "", false
	}
	best, bestArea := "", 0.0
	for _, code := range s.codes {
		r := s.Regions[code]
		if !r.Contains(p) {
			continue
		}
		area := r.BBox.Width * r.BBox.Height
		if best == "" || area < bestArea {
			best, bestArea = code, area
		}
	}
	return best, best != ""
}
