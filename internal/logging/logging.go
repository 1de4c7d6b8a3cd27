package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. format is "json" (production encoder) or "console".
func New(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console", "text":
		cfg = zap.NewDevelopmentConfig()
	case "", "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	lvl := zapcore.InfoLevel
	if strings.TrimSpace(level) != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
