// Package log provides the process-wide structured logger for kubectl-smart.
//
// Diagnostics that matter to an operator running with --debug go here;
// diagnostics that matter to the end user reading a diag/graph/top result
// go through the notes[] channel instead (see internal/orchestrator).
package log

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger = zap.NewNop()
)

// Configure installs the process logger at the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to "info". Safe to call more
// than once; the most recent call wins.
func Configure(level string, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	lvl := zapcore.InfoLevel
	if debug {
		lvl = zapcore.DebugLevel
	} else if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(cfg)

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), lvl)
	logger = zap.New(core)
}

// L returns the current process logger.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// S returns the current process logger's sugared form.
func S() *zap.SugaredLogger {
	return L().Sugar()
}
