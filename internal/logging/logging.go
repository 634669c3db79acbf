// Package logging builds the shared zap logger. The TUI owns stdout and
// stderr, so everything goes to a file.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a production logger writing to path. An empty path or an
// unwritable file degrades to a no-op logger rather than failing startup.
func New(path string, debug bool) *zap.Logger {
	if path == "" {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
