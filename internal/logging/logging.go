// Package logging builds the process logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"euromap/internal/config"
)

// New returns a JSON logger writing to cfg.File at cfg.Level. Without a
// file the logger discards everything. verbose forces the debug level.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log directory: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{cfg.File}
	zc.ErrorOutputPaths = []string{cfg.File}
	zc.Sampling = nil
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return log, nil
}
