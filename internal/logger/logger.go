// Package logger provides the process-wide zap sugared logger. It is built
// once from a level and an environment; tests swap it with Set.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger
)

// Options selects how the logger is built.
type Options struct {
	// Level is a zap level name (debug, info, warn, error). Unknown or empty
	// values fall back to info.
	Level string
	// Environment "production" selects the JSON encoder; anything else the
	// console encoder.
	Environment string
	// OutputPaths defaults to stderr so that stdout stays free for the form view.
	OutputPaths []string
}

// Init builds the global logger from opts and replaces the current one.
func Init(opts Options) error {
	l, err := build(opts)
	if err != nil {
		return err
	}
	mu.Lock()
	logger = l
	mu.Unlock()
	return nil
}

func build(opts Options) (*zap.SugaredLogger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	if opts.Environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return zl.Sugar(), nil
}

// Get returns the global logger, building a default info-level one on first
// use when Init was never called.
func Get() *zap.SugaredLogger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		built, err := build(Options{})
		if err != nil {
			built = zap.NewNop().Sugar()
		}
		logger = built
	}
	return logger
}

// Set replaces the global logger and returns a func restoring the previous one.
func Set(l *zap.SugaredLogger) (restore func()) {
	mu.Lock()
	prev := logger
	logger = l
	mu.Unlock()
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		_ = l.Sync()
	}
}
