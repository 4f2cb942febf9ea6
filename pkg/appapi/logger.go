package appapi

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes JSON log lines to a file under ~/.certa/logs/.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	zl   *zap.Logger
	name string
}

var (
	globalLogger   *Logger
	globalLoggerMu sync.RWMutex
)

// SetLogger registers the logger returned by Log().
// The previously registered logger, if any, is closed.
func SetLogger(l *Logger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger != nil && globalLogger != l {
		globalLogger.Close()
	}
	globalLogger = l
}

// Log returns the current logger, or a no-op logger if none has been set.
func Log() *Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if globalLogger == nil {
		return &Logger{zl: zap.NewNop()}
	}
	return globalLogger
}

// CloseLogger closes the registered logger.
func CloseLogger() {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger != nil {
		globalLogger.Close()
		globalLogger = nil
	}
}

// NewLogger opens (or creates) ~/.certa/logs/<name>.log in append mode.
func NewLogger(name string, debug bool) (*Logger, error) {
	dir := LogsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	path := filepath.Join(dir, name+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	l := &Logger{file: f, name: name, zl: newZap(f, debug).Named(name)}
	l.Info("logger started")
	return l, nil
}

func newZap(f *os.File, debug bool) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)
	return zap.New(core)
}

// Zap exposes the structured logger for callers that want typed fields.
func (l *Logger) Zap() *zap.Logger {
	if l == nil || l.zl == nil {
		return zap.NewNop()
	}
	return l.zl
}

// Debug writes a debug log line.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Zap().Sugar().Debugf(format, args...)
}

// Info writes an informational log line.
func (l *Logger) Info(format string, args ...interface{}) {
	l.Zap().Sugar().Infof(format, args...)
}

// Warn writes a warning log line.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.Zap().Sugar().Warnf(format, args...)
}

// Error writes an error log line.
func (l *Logger) Error(format string, args ...interface{}) {
	l.Zap().Sugar().Errorf(format, args...)
}

// Close flushes and closes the log file.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.zl != nil {
		_ = l.zl.Sync()
	}
	if l.file != nil {
		l.file.Close()
		l.file = nil
		l.zl = zap.NewNop()
	}
}
