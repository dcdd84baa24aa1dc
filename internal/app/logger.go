// Package app holds process-wide application concerns shared by every layer
package app

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger is the logging surface the application and adapter layers depend on.
// The CLI installs its levelled logger through SetLogger.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// writerLogger prints every level to one writer without filtering
type writerLogger struct {
	mu     sync.Mutex
	output io.Writer
}

// NewWriterLogger returns a Logger that writes `LEVEL: msg` lines to w
func NewWriterLogger(w io.Writer) Logger {
	return &writerLogger{output: w}
}

func (l *writerLogger) log(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.output, level+": "+format+"\n", args...)
}

func (l *writerLogger) Debug(format string, args ...interface{}) { l.log("DEBUG", format, args...) }
func (l *writerLogger) Info(format string, args ...interface{})  { l.log("INFO", format, args...) }
func (l *writerLogger) Warn(format string, args ...interface{})  { l.log("WARN", format, args...) }
func (l *writerLogger) Error(format string, args ...interface{}) { l.log("ERROR", format, args...) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// NopLogger discards everything
var NopLogger Logger = nopLogger{}

var (
	loggerMu     sync.RWMutex
	globalLogger Logger = NewWriterLogger(os.Stderr)
)

// SetLogger sets the global logger for app layer
func SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	loggerMu.Lock()
	globalLogger = logger
	loggerMu.Unlock()
}

// GetLogger returns the current logger
func GetLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// LoggerOr returns l, or the global logger when l is nil
func LoggerOr(l Logger) Logger {
	if l != nil {
		return l
	}
	return GetLogger()
}
