package scene

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed assets/europe.geojson
var europeGeoJSON []byte

// Default returns the built-in coarse map of Europe.
func Default() *Scene {
	s, err := LoadGeoJSON(bytes.NewReader(europeGeoJSON))
	if err != nil {
		panic("scene: embedded map is broken: " + err.Error())
	}
	return s
}

// Load reads a map file, choosing the parser by extension.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		return ParseSVG(f)
	case ".geojson", ".json":
		return LoadGeoJSON(f)
	default:
		return nil, fmt.Errorf("scene: unsupported map file %q", ext)
	}
}
