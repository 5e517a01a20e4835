// Package logger provides leveled logging for the alert service.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu       sync.RWMutex
	minLevel = LevelInfo
	std      = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
)

// Init configures the default logger from config values.
func Init(level string) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = ParseLevel(level)
}

// SetOutput redirects log output, used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

func logf(l Level, tag, format string, args ...interface{}) {
	mu.RLock()
	enabled := l >= minLevel
	mu.RUnlock()
	if !enabled {
		return
	}
	_ = std.Output(3, tag+" "+fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...interface{}) { logf(LevelDebug, "[DEBUG]", format, args...) }
func Infof(format string, args ...interface{})  { logf(LevelInfo, "[INFO]", format, args...) }
func Warnf(format string, args ...interface{})  { logf(LevelWarn, "[WARN]", format, args...) }
func Errorf(format string, args ...interface{}) { logf(LevelError, "[ERROR]", format, args...) }

// Fatalf logs at error level and exits.
func Fatalf(format string, args ...interface{}) {
	_ = std.Output(2, "[FATAL] "+fmt.Sprintf(format, args...))
	os.Exit(1)
}
