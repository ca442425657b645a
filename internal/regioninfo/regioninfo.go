// Package regioninfo holds per-country metadata: display names, political
// alignment attributes and the left-right ideology score.
package regioninfo

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"euromap/internal/viewport"
)

//go:embed countries.yaml
var defaultTable []byte

// Attribute is a labelled, coloured political attribute.
type Attribute struct {
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

// Valid reports whether the attribute carries a label.
func (a Attribute) Valid() bool { return a.Label != "" }

// Info describes one region.
type Info struct {
	Code       string    `yaml:"-"`
	Name       string    `yaml:"name"`
	President  Attribute `yaml:"president"`
	Government Attribute `yaml:"government"`
	AI         Attribute `yaml:"ai"`
	Ideology   *float64  `yaml:"ideology"`
}

// Attribute returns the attribute that drives the fill under mode.
func (i Info) Attribute(mode viewport.ColorMode) (Attribute, bool) {
	var a Attribute
	switch mode {
	case viewport.ColorPresident:
		a = i.President
	case viewport.ColorGovernment:
		a = i.Government
	case viewport.ColorAI:
		a = i.AI
	default:
		return Attribute{}, false
	}
	return a, a.Valid()
}

type table struct {
	Countries map[string]Info `yaml:"countries"`
}

// Provider answers region lookups. A nil *Provider knows nothing.
type Provider struct {
	byCode map[string]Info
	codes  []string
}

// Default returns the provider built from the embedded country table.
func Default() *Provider {
	p, err := Parse(bytes.NewReader(defaultTable))
	if err != nil {
		panic("regioninfo: embedded table is broken: " + err.Error())
	}
	return p
}

// Load reads a country table from a YAML file.
func Load(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("regioninfo: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a country table.
func Parse(r io.Reader) (*Provider, error) {
	var t table
	if err := yaml.NewDecoder(r).Decode(&t); err != nil && err != io.EOF {
		return nil, fmt.Errorf("regioninfo: decode: %w", err)
	}
	p := &Provider{byCode: make(map[string]Info, len(t.Countries))}
	for code, info := range t.Countries {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if v := info.Ideology; v != nil && (*v < -1 || *v > 1) {
			return nil, fmt.Errorf("regioninfo: %s: ideology %v outside [-1, 1]", code, *v)
		}
		info.Code = code
		p.byCode[code] = info
		p.codes = append(p.codes, code)
	}
	sort.Strings(p.codes)
	return p, nil
}

// Lookup returns the metadata for code. A missing entry means an unknown
// region, which callers render with the upper-cased code.
func (p *Provider) Lookup(code string) (Info, bool) {
	if p == nil {
		return Info{}, false
	}
	info, ok := p.byCode[strings.ToLower(code)]
	return info, ok
}

// Ideology returns the region's left-right score in [-1, 1].
func (p *Provider) Ideology(code string) (float64, bool) {
	info, ok := p.Lookup(code)
	if !ok || info.Ideology == nil {
		return 0, false
	}
	return *info.Ideology, true
}

// DisplayName returns the region's name, or its upper-cased code.
func (p *Provider) DisplayName(code string) string {
	if info, ok := p.Lookup(code); ok && info.Name != "" {
		return info.Name
	}
	return strings.ToUpper(code)
}

// Codes returns the known region codes in sorted order.
func (p *Provider) Codes() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.codes...)
}

// Flag turns a two-letter code into its regional-indicator emoji pair.
// Anything else yields the empty string.
func Flag(code string) string {
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(code) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + c - 'A')
	}
	return b.String()
}
