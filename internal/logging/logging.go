// Package logging provides the process-wide structured logger, enabled by
// the PLM_DEBUG environment variable and rotated with lumberjack.
//
// Grounded on the teacher pack's debug-logging bootstrap
// (yanmxa-gencode's internal/log package): a package-level zap.Logger,
// a no-op logger until Init is called, and lumberjack-backed rotation
// under the user's dotdir.
package logging

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu          sync.Mutex
	logger      *zap.Logger
	initialized bool
)

// Init wires up file-based debug logging when PLM_DEBUG=1, rotated via
// lumberjack under <dotdir>/logs/debug.log. It is a no-op on subsequent
// calls. When debug logging is disabled, L returns a no-op logger.
func Init(dotdir string) error {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return nil
	}
	initialized = true

	if os.Getenv("PLM_DEBUG") != "1" {
		logger = zap.NewNop()
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		logger = zap.NewNop()
		return err
	}
	logDir := filepath.Join(home, dotdir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		logger = zap.NewNop()
		return err
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "debug.log"),
		MaxSize:    20,
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, zapcore.InfoLevel)
	logger = zap.New(core, zap.AddCaller())
	return nil
}

// L returns the process logger, a no-op logger before Init is called.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		return nil
	}
	return logger.Sync()
}
