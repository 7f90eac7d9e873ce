// Package logging constructs the process-wide zap.Logger, matching the
// donor's cmd/l1jgo/main.go newLogger: JSON via zap.NewProductionConfig()
// or a colorized console config via zap.NewDevelopmentConfig(), selected
// by config.LoggingConfig.Format.
package logging

import (
	"github.com/tibiaserver/server/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger from the given logging config.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	if cfg.Format == "json" {
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		return zc.Build()
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	zc.EncoderConfig.ConsoleSeparator = " "
	zc.DisableCaller = true
	zc.DisableStacktrace = true
	return zc.Build()
}
