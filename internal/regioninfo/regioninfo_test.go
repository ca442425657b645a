package regioninfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"euromap/internal/viewport"
)

func TestDefaultTable(t *testing.T) {
	p := Default()

	ro, ok := p.Lookup("RO")
	require.True(t, ok)
	assert.Equal(t, "ro", ro.Code)
	assert.Equal(t, "Romania", ro.Name)
	assert.Equal(t, Attribute{Label: "EPP", Color: "#1d4ed8"}, ro.President)
	assert.Equal(t, "Pro-EU", ro.AI.Label)

	assert.Equal(t, "Norway", p.DisplayName("no"))
	assert.GreaterOrEqual(t, len(p.Codes()), 27)
}

func TestUnknownRegion(t *testing.T) {
	p := Default()
	_, ok := p.Lookup("xx")
	assert.False(t, ok)
	assert.Equal(t, "XX", p.DisplayName("xx"))
	_, ok = p.Ideology("xx")
	assert.False(t, ok)

	var nilProvider *Provider
	assert.Equal(t, "RO", nilProvider.DisplayName("ro"))
	assert.Nil(t, nilProvider.Codes())
}

func TestIdeologyColor(t *testing.T) {
	tests := []struct {
		v    float64
		ok   bool
		want string
	}{
		{0, false, NeutralFill},
		{-1, true, DarkRed},
		{-0.5, true, DarkRed},
		{-0.49, true, LightRed},
		{-0.06, true, LightRed},
		{-0.05, true, Gray},
		{0, true, Gray},
		{0.05, true, Gray},
		{0.06, true, LightBlue},
		{0.49, true, LightBlue},
		{0.5, true, DarkBlue},
		{1, true, DarkBlue},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IdeologyColor(tt.v, tt.ok), "v=%v ok=%v", tt.v, tt.ok)
	}
}

func TestFill(t *testing.T) {
	p := Default()

	assert.Equal(t, NeutralFill, p.Fill("ro", viewport.ColorNeutral))
	assert.Equal(t, "#1d4ed8", p.Fill("ro", viewport.ColorPresident))
	assert.Equal(t, "#38bdf8", p.Fill("fr", viewport.ColorGovernment))
	assert.Equal(t, "#9ca3af", p.Fill("fr", viewport.ColorAI))
	assert.Equal(t, LightBlue, p.Fill("ro", viewport.ColorIdeology))
	assert.Equal(t, Gray, p.Fill("fr", viewport.ColorIdeology))

	// entries without attributes fall back to the neutral fill
	assert.Equal(t, NeutralFill, p.Fill("at", viewport.ColorPresident))
	assert.Equal(t, NeutralFill, p.Fill("at", viewport.ColorIdeology))
	assert.Equal(t, NeutralFill, p.Fill("xx", viewport.ColorAI))
}

func TestLegend(t *testing.T) {
	assert.Equal(t, ParliamentGroups, Legend(viewport.ColorPresident))
	assert.Equal(t, AIAlignment, Legend(viewport.ColorAI))
	assert.Len(t, Legend(viewport.ColorIdeology), 5)
	assert.Len(t, Legend(viewport.ColorNeutral), len(ParliamentGroups)+len(AIAlignment))
}

func TestParse(t *testing.T) {
	doc := `
countries:
  PT:
    name: Portugal
    ai: {label: Anti-EU, color: "#ea580c"}
    ideology: -0.7
`
	p, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"pt"}, p.Codes())

	v, ok := p.Ideology("pt")
	require.True(t, ok)
	assert.InDelta(t, -0.7, v, 1e-12)
	assert.Equal(t, DarkRed, p.Fill("pt", viewport.ColorIdeology))
	assert.Equal(t, "#ea580c", p.Fill("pt", viewport.ColorAI))
	assert.Equal(t, NeutralFill, p.Fill("pt", viewport.ColorPresident))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("countries:\n  ro: {ideology: 3}\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("countries: [1, 2"))
	assert.Error(t, err)

	p, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, p.Codes())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("countries:\n  mt: {name: Malta}\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Malta", p.DisplayName("MT"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFlag(t *testing.T) {
	assert.Equal(t, "🇷🇴", Flag("ro"))
	assert.Empty(t, Flag("r1"))
	assert.Empty(t, Flag("rou"))
}
