// Package logging builds the zap loggers used across brainkit.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/abhisek/brainkit/internal/config"
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New builds a logger from cfg. Console output goes to console (skipped when
// nil); dev mode uses the human-readable encoder and prod mode JSON. When
// cfg.File is set, JSON lines are also written to a rotated file.
// With neither sink the logger is a no-op.
func New(cfg config.LogConfig, console io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var cores []zapcore.Core
	if console != nil {
		var enc zapcore.Encoder
		if cfg.Mode == "prod" {
			enc = zapcore.NewJSONEncoder(encoderConfig())
		} else {
			ec := encoderConfig()
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
			ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
			enc = zapcore.NewConsoleEncoder(ec)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(console), level))
	}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   true,
			}),
			level,
		))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
}
