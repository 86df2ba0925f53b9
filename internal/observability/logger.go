// Package observability builds the structured logger shared by every
// component.
package observability

import (
	"fmt"

	"github.com/upb/shipment-ledger/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from the observability configuration.
// LogFormat selects json or console encoding; LogLevel the minimum level.
func NewLogger(cfg config.ObservabilityConfig, development bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zapCfg zap.Config
	if development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	switch cfg.LogFormat {
	case "text", "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
