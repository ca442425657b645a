package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"euromap/internal/news"
	"euromap/internal/viewport"
)

// Config holds all euromap configuration.
type Config struct {
	// Map view behaviour
	Viewport ViewportConfig `yaml:"viewport"`

	// Map and country data files
	Map MapConfig `yaml:"map"`

	// Data sources of the country page
	Stock StockConfig `yaml:"stock"`
	News  NewsConfig  `yaml:"news"`

	// Stock API server (euromap serve)
	Server ServerConfig `yaml:"server"`

	// Non-interactive reports (euromap report)
	Report ReportConfig `yaml:"report"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ViewportConfig tunes pan and zoom.
type ViewportConfig struct {
	ScaleMin       float64 `yaml:"scale_min"`
	ScaleMax       float64 `yaml:"scale_max"`
	FitScale       float64 `yaml:"fit_scale"`
	FocusScale     float64 `yaml:"focus_scale"`
	ZoomInFactor   float64 `yaml:"zoom_in_factor"`
	ZoomOutFactor  float64 `yaml:"zoom_out_factor"`
	FitToContainer bool    `yaml:"fit_to_container"`
	ColorMode      string  `yaml:"color_mode"` // neutral, president, government, ai, ideology
}

// MapConfig locates the map and the country table. Empty paths select the
// built-in data.
type MapConfig struct {
	Path    string `yaml:"path"`    // .svg or .geojson
	Regions string `yaml:"regions"` // countries YAML
	Watch   bool   `yaml:"watch"`   // reload the map when the file changes
}

// StockConfig configures the stock endpoint client and store.
type StockConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	DBPath  string `yaml:"db_path"`
}

// NewsConfig configures the headline search.
type NewsConfig struct {
	BaseURL    string `yaml:"base_url"`
	Timeout    string `yaml:"timeout"`
	Language   string `yaml:"language"`
	Timespan   string `yaml:"timespan"`
	MaxRecords int    `yaml:"max_records"`
}

// ServerConfig configures the stock API server.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	AccessLog    bool   `yaml:"access_log"`
}

// ReportConfig configures euromap report.
type ReportConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// LoggingConfig configures logging. The interactive map owns the terminal,
// so logs only ever go to a file.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty disables logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	o := viewport.DefaultOptions()
	return &Config{
		Viewport: ViewportConfig{
			ScaleMin:      o.ScaleMin,
			ScaleMax:      o.ScaleMax,
			FitScale:      o.FitScale,
			FocusScale:    o.FocusScale,
			ZoomInFactor:  o.ZoomInFactor,
			ZoomOutFactor: o.ZoomOutFactor,
			ColorMode:     viewport.ColorNeutral.String(),
		},
		Map: MapConfig{Watch: true},
		Stock: StockConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "10s",
			DBPath:  "data/db/stock.db",
		},
		News: NewsConfig{
			BaseURL:    news.DefaultBaseURL,
			Timeout:    "15s",
			Language:   "english",
			Timespan:   "3d",
			MaxRecords: 8,
		},
		Server: ServerConfig{
			Port:         "8000",
			ReadTimeout:  "10s",
			WriteTimeout: "10s",
		},
		Report: ReportConfig{Concurrency: 4},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EUROMAP_STOCK_URL"); v != "" {
		c.Stock.BaseURL = v
	}
	if v := os.Getenv("EUROMAP_NEWS_URL"); v != "" {
		c.News.BaseURL = v
	}
	if v := os.Getenv("EUROMAP_DB_PATH"); v != "" {
		c.Stock.DBPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("EUROMAP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("EUROMAP_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// ViewportOptions converts the viewport section for the controller.
func (c *Config) ViewportOptions() viewport.Options {
	v := c.Viewport
	return viewport.Options{
		ScaleMin:       v.ScaleMin,
		ScaleMax:       v.ScaleMax,
		FitScale:       v.FitScale,
		FocusScale:     v.FocusScale,
		ZoomInFactor:   v.ZoomInFactor,
		ZoomOutFactor:  v.ZoomOutFactor,
		FitToContainer: v.FitToContainer,
	}
}

// ColorMode returns the configured start colour mode.
func (c *Config) ColorMode() viewport.ColorMode {
	m, err := viewport.ParseColorMode(c.Viewport.ColorMode)
	if err != nil {
		return viewport.ColorNeutral
	}
	return m
}

// NewsQuery builds the headline query for a country name.
func (c *Config) NewsQuery(country string) news.Query {
	return news.Query{
		Country:    country,
		Language:   c.News.Language,
		Timespan:   c.News.Timespan,
		MaxRecords: c.News.MaxRecords,
	}
}

// GetStockTimeout returns the stock request timeout.
func (c *Config) GetStockTimeout() time.Duration {
	return parseDuration(c.Stock.Timeout, 10*time.Second)
}

// GetNewsTimeout returns the news request timeout.
func (c *Config) GetNewsTimeout() time.Duration {
	return parseDuration(c.News.Timeout, 15*time.Second)
}

// GetReadTimeout returns the server read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 10*time.Second)
}

// GetWriteTimeout returns the server write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 10*time.Second)
}

// ListenAddr is the server address, ":PORT".
func (c *Config) ListenAddr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if err := c.ViewportOptions().Validate(); err != nil {
		return err
	}
	if _, err := viewport.ParseColorMode(c.Viewport.ColorMode); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}
	for name, d := range map[string]string{
		"stock.timeout":        c.Stock.Timeout,
		"news.timeout":         c.News.Timeout,
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
	} {
		if d == "" {
			continue
		}
		if v, err := time.ParseDuration(d); err != nil || v <= 0 {
			return fmt.Errorf("invalid %s %q", name, d)
		}
	}
	if c.News.MaxRecords <= 0 {
		return fmt.Errorf("news.max_records must be > 0")
	}
	if c.Report.Concurrency <= 0 {
		return fmt.Errorf("report.concurrency must be > 0")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}
