// Package logging builds the zap loggers used across febb.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	globalMu     sync.RWMutex
)

// New builds a production logger writing JSON lines to stderr at the given level.
func New(level zapcore.Level) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("febb"), nil
}

// Init replaces the global logger. It is called once by the CLI.
func Init(level zapcore.Level) error {
	logger, err := New(level)
	if err != nil {
		return err
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
	return nil
}

// L returns the global logger, or a no-op logger before Init.
func L() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Sync flushes the global logger.
func Sync() {
	_ = L().Sync()
}
