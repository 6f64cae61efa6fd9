// Package logging builds the runtime logger. The viewer owns the terminal,
// so logs go to a rotating file rather than stdout.
package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const loggerKey = contextKey("logger")

// Config controls where and how much is logged.
type Config struct {
	Path       string // empty disables file output
	Level      string // debug, info, warn, error
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultPath returns ~/.local/state/logview/logview.log.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "logview", "logview.log")
}

// New returns a logger writing to a rotating file at cfg.Path. With no path
// it returns a no-op logger.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.Path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = zapcore.InfoLevel
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    withDefault(cfg.MaxSizeMB, 10),
		MaxBackups: withDefault(cfg.MaxBackups, 3),
		MaxAge:     withDefault(cfg.MaxAgeDays, 28),
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	core := zapcore.NewCore(encoder, zapcore.AddSync(rotator), level)
	return zap.New(core, zap.AddCaller()), nil
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.NewNop()
}

func withDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
