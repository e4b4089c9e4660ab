// Package logger is a thin wrapper around logrus giving every module a
// consistently tagged log line, mirroring the call shape used throughout
// the agent runtime this package was modeled on.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.Mutex
	log = logrus.New()
	out io.Writer
)

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
}

// InitLog points the logger at a file path, creating parent state lazily.
// Passing an empty path leaves the logger writing to stderr.
func InitLog(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if path == "" {
		log.SetOutput(os.Stderr)
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logger: open %q: %w", path, err)
	}
	out = f
	log.SetOutput(f)
	return nil
}

// FlushLog closes the underlying file sink, if any was opened by InitLog.
func FlushLog() {
	mu.Lock()
	defer mu.Unlock()

	if closer, ok := out.(io.Closer); ok {
		_ = closer.Close()
	}
	out = nil
}

// SetLevel adjusts the global log level (debug, info, warn, error).
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	log.SetLevel(lvl)
}

func Debug(format string, args ...interface{}) { log.Debugf(format, args...) }
func Info(format string, args ...interface{})  { log.Infof(format, args...) }
func Warn(format string, args ...interface{})  { log.Warnf(format, args...) }
func Error(format string, args ...interface{}) { log.Errorf(format, args...) }

// DebugX, InfoX, WarnX and ErrorX tag the line with a module name, so logs
// from several engine layers interleave without losing their origin.
func DebugX(module, format string, args ...interface{}) {
	log.WithField("module", module).Debugf(format, args...)
}

func InfoX(module, format string, args ...interface{}) {
	log.WithField("module", module).Infof(format, args...)
}

func WarnX(module, format string, args ...interface{}) {
	log.WithField("module", module).Warnf(format, args...)
}

func ErrorX(module, format string, args ...interface{}) {
	log.WithField("module", module).Errorf(format, args...)
}
