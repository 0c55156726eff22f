// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package log provides the structured logger used throughout
// the engine.
// It is a thin layer over zap. The process logger is a no-op
// until Set or Init is called.
package log

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured log field.
type Field = zap.Field

// Field constructors.
var (
	String   = zap.String
	Int      = zap.Int
	Uint64   = zap.Uint64
	Bool     = zap.Bool
	Float32  = zap.Float32
	Duration = zap.Duration
	Stringer = zap.Stringer
	Any      = zap.Any
	Err      = zap.Error
)

// Config is used to configure a logger.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	//
	// Default is "info".
	Level string `yaml:"level" toml:"level"`

	// Encoding is either "json" or "console".
	//
	// Default is "console".
	Encoding string `yaml:"encoding" toml:"encoding"`

	// Output paths, as understood by zap.
	//
	// Default is stderr.
	Output []string `yaml:"output,omitempty" toml:"output,omitempty"`
}

// New creates a logger as described by cfg.
func New(cfg Config) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		if lvl, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return nil, err
		}
	}
	enc := cfg.Encoding
	if enc == "" {
		enc = "console"
	}
	out := cfg.Output
	if len(out) == 0 {
		out = []string{"stderr"}
	}
	ecfg := zap.NewProductionEncoderConfig()
	ecfg.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(lvl),
		Development: false,
		// Invalid-argument no-ops repeat every frame.
		Sampling: &zap.SamplingConfig{
			Initial:    20,
			Thereafter: 200,
		},
		Encoding:         enc,
		EncoderConfig:    ecfg,
		OutputPaths:      out,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return zcfg.Build()
}

var logger atomic.Pointer[zap.Logger]

func init() { logger.Store(zap.NewNop()) }

// L returns the process logger.
func L() *zap.Logger { return logger.Load() }

// Set replaces the process logger.
// A nil l installs a no-op logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Init creates a logger from cfg and installs it as the
// process logger.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Named returns the process logger with a component field.
func Named(component string) *zap.Logger {
	return L().With(zap.String("component", component))
}

// Sync flushes the process logger.
// It should be called before the process exits.
func Sync() { _ = L().Sync() }

// Since is a convenience for logging elapsed times.
func Since(key string, t time.Time) Field { return zap.Duration(key, time.Since(t)) }
