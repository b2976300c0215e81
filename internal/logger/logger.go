// Package logger builds the process-wide slog.Logger. Records are encoded
// by zap: JSON in production, a coloured console layout everywhere else.
package logger

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/aanand-mishra/students-api/internal/config"
)

// New returns a logger for env together with the zap logger behind it.
// Callers should Sync the zap logger before exiting.
func New(env string) (*slog.Logger, *zap.Logger, error) {
	var cfg zap.Config

	switch env {
	case config.EnvProd:
		cfg = zap.NewProductionConfig()
	case config.EnvStaging:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stdout"}

	zl, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger: %w", err)
	}

	log := slog.New(zapslog.NewHandler(zl.Core(), zapslog.WithName("students-api")))
	return log, zl, nil
}
