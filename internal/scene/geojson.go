package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"seehuhn.de/go/geom/vec"
)

// codeKeys are the feature properties tried, in order, for the region code.
var codeKeys = []string{"iso_a2", "ISO_A2", "code", "id", "ISO2"}

var nameKeys = []string{"name", "NAME", "admin", "ADMIN"}

// degreeUnits is the number of scene units per degree of latitude.
const degreeUnits = 4

// LoadGeoJSON reads a FeatureCollection (or single Feature) of Polygon and
// MultiPolygon features. Longitude/latitude are projected
// equirectangularly around the collection's mean latitude with north up,
// degreeUnits scene units to the degree.
func LoadGeoJSON(r io.Reader) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("scene: read geojson: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("scene: decode geojson: %w", err)
	}

	type feature struct {
		code, name string
		polys      [][][][2]float64
	}
	var feats []feature

	parsePoint := func(v any) (pt [2]float64, ok bool) {
		if a, ok := v.([]any); ok && len(a) >= 2 {
			lon, lok := a[0].(float64)
			lat, aok := a[1].(float64)
			if lok && aok {
				return [2]float64{lon, lat}, true
			}
		}
		return [2]float64{}, false
	}
	parseRing := func(v any) (ring [][2]float64) {
		arr, _ := v.([]any)
		for _, el := range arr {
			if pt, ok := parsePoint(el); ok {
				ring = append(ring, pt)
			}
		}
		return ring
	}
	parsePolygon := func(v any) (poly [][][2]float64) {
		arr, _ := v.([]any)
		for _, ring := range arr {
			if ls := parseRing(ring); len(ls) > 0 {
				poly = append(poly, ls)
			}
		}
		return poly
	}
	geometry := func(g map[string]any) (polys [][][][2]float64) {
		switch gt, _ := g["type"].(string); gt {
		case "Polygon":
			if p := parsePolygon(g["coordinates"]); len(p) > 0 {
				polys = append(polys, p)
			}
		case "MultiPolygon":
			arr, _ := g["coordinates"].([]any)
			for _, el := range arr {
				if p := parsePolygon(el); len(p) > 0 {
					polys = append(polys, p)
				}
			}
		}
		return polys
	}
	firstString := func(props map[string]any, keys []string) string {
		for _, k := range keys {
			if s, ok := props[k].(string); ok && s != "" && s != "-99" {
				return s
			}
		}
		return ""
	}
	addFeature := func(f map[string]any) {
		g, ok := f["geometry"].(map[string]any)
		if !ok {
			return
		}
		props, _ := f["properties"].(map[string]any)
		code := firstString(props, codeKeys)
		if code == "" {
			code, _ = f["id"].(string)
		}
		feats = append(feats, feature{
			code:  code,
			name:  firstString(props, nameKeys),
			polys: geometry(g),
		})
	}

	switch t, _ := raw["type"].(string); t {
	case "Feature":
		addFeature(raw)
	case "FeatureCollection":
		fs, _ := raw["features"].([]any)
		for _, f := range fs {
			if fm, ok := f.(map[string]any); ok {
				addFeature(fm)
			}
		}
	default:
		return nil, fmt.Errorf("scene: unsupported geojson type %q", t)
	}

	// mean latitude of all vertices sets the horizontal stretch
	var sumLat float64
	var n int
	for _, f := range feats {
		for _, poly := range f.polys {
			for _, ring := range poly {
				for _, p := range ring {
					sumLat += p[1]
					n++
				}
			}
		}
	}
	if n == 0 {
		return nil, ErrNoRegions
	}
	k := math.Cos(sumLat / float64(n) * math.Pi / 180)

	s := newScene()
	for _, f := range feats {
		var rings [][]vec.Vec2
		for _, poly := range f.polys {
			for _, ring := range poly {
				out := make([]vec.Vec2, len(ring))
				for i, p := range ring {
					out[i] = vec.Vec2{X: p[0] * k * degreeUnits, Y: -p[1] * degreeUnits}
				}
				rings = append(rings, out)
			}
		}
		s.add(f.code, f.name, rings)
	}
	return s.finish()
}
