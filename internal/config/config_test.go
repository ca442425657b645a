package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"euromap/internal/news"
	"euromap/internal/viewport"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, viewport.DefaultOptions(), cfg.ViewportOptions())
	assert.Equal(t, viewport.ColorNeutral, cfg.ColorMode())
	assert.Equal(t, news.DefaultQuery("Romania"), cfg.NewsQuery("Romania"))
	assert.Equal(t, 10*time.Second, cfg.GetStockTimeout())
	assert.Equal(t, ":8000", cfg.ListenAddr())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Viewport, cfg.Viewport)
}

func TestLoadMergesFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "euromap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
viewport:
  scale_max: 4
  color_mode: ideology
news:
  max_records: 5
  timeout: 2s
server:
  port: "9100"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4.0, cfg.Viewport.ScaleMax)
	assert.Equal(t, 0.6, cfg.Viewport.ScaleMin)
	assert.Equal(t, viewport.ColorIdeology, cfg.ColorMode())
	assert.Equal(t, 5, cfg.NewsQuery("Malta").MaxRecords)
	assert.Equal(t, 2*time.Second, cfg.GetNewsTimeout())
	assert.Equal(t, ":9100", cfg.ListenAddr())
	assert.Equal(t, "english", cfg.News.Language)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewport: [1, 2"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "euromap.yaml")
	cfg := DefaultConfig()
	cfg.Map.Path = "maps/europe.svg"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "maps/europe.svg", loaded.Map.Path)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EUROMAP_STOCK_URL", "http://stocks.internal:8080")
	t.Setenv("EUROMAP_NEWS_URL", "http://news.internal/doc")
	t.Setenv("EUROMAP_DB_PATH", "/tmp/q.db")
	t.Setenv("PORT", "3005")
	t.Setenv("EUROMAP_LOG_LEVEL", "debug")
	t.Setenv("EUROMAP_LOG_FILE", "/tmp/euromap.log")

	cfg := &Config{}
	cfg.applyEnvOverrides()

	assert.Equal(t, "http://stocks.internal:8080", cfg.Stock.BaseURL)
	assert.Equal(t, "http://news.internal/doc", cfg.News.BaseURL)
	assert.Equal(t, "/tmp/q.db", cfg.Stock.DBPath)
	assert.Equal(t, "3005", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/euromap.log", cfg.Logging.File)

	t.Run("empty values keep config", func(t *testing.T) {
		t.Setenv("PORT", "")
		cfg := &Config{Server: ServerConfig{Port: "8000"}}
		cfg.applyEnvOverrides()
		assert.Equal(t, "8000", cfg.Server.Port)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min above max", func(c *Config) { c.Viewport.ScaleMin = 9 }},
		{"fit outside bounds", func(c *Config) { c.Viewport.FitScale = 0.1 }},
		{"zoom in does not zoom", func(c *Config) { c.Viewport.ZoomInFactor = 1 }},
		{"zoom out does not zoom", func(c *Config) { c.Viewport.ZoomOutFactor = 1.2 }},
		{"unknown color mode", func(c *Config) { c.Viewport.ColorMode = "rainbow" }},
		{"bad timeout", func(c *Config) { c.Stock.Timeout = "soon" }},
		{"no records", func(c *Config) { c.News.MaxRecords = 0 }},
		{"no concurrency", func(c *Config) { c.Report.Concurrency = 0 }},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ReadTimeout = "nonsense"
	cfg.Server.WriteTimeout = "-1s"
	assert.Equal(t, 10*time.Second, cfg.GetReadTimeout())
	assert.Equal(t, 10*time.Second, cfg.GetWriteTimeout())
}
