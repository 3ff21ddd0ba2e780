// Package logger provides leveled logging with support for debug, info, warn, and error levels.
// Output is either plain text lines from the standard log package or one JSON
// object per line, selected by the logging.format setting.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level
type Level int

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel
	// ErrorLevel logs are high-priority. If an application is running smoothly, it shouldn't generate any error-level logs.
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps a config string to a Level. Unknown names fall back to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger provides leveled logging
type Logger struct {
	mu     sync.Mutex
	level  Level
	json   bool
	out    io.Writer
	logger *log.Logger
}

var (
	// Global logger instance
	defaultLogger *Logger
)

// Init initializes the default logger with the specified level and format
func Init(level string, format string) {
	defaultLogger = newLogger(os.Stderr, ParseLevel(level), strings.ToLower(format) == "json")
}

// SetOutput redirects the default logger, initializing it at info level if needed.
func SetOutput(w io.Writer) {
	if defaultLogger == nil {
		defaultLogger = newLogger(w, InfoLevel, false)
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.out = w
	defaultLogger.logger.SetOutput(w)
}

func newLogger(w io.Writer, level Level, asJSON bool) *Logger {
	return &Logger{
		level:  level,
		json:   asJSON,
		out:    w,
		logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds),
	}
}

type entry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

func (l *Logger) write(level Level, format string, args ...interface{}) {
	if l == nil || level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.json {
		line, err := json.Marshal(entry{
			Time:    time.Now().UTC().Format(time.RFC3339Nano),
			Level:   strings.ToLower(level.String()),
			Message: msg,
		})
		if err != nil {
			return
		}
		_, _ = l.out.Write(append(line, '\n'))
		return
	}
	_ = l.logger.Output(3, "["+level.String()+"] "+msg)
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) {
	defaultLogger.write(DebugLevel, format, args...)
}

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) {
	defaultLogger.write(InfoLevel, format, args...)
}

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) {
	defaultLogger.write(WarnLevel, format, args...)
}

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) {
	defaultLogger.write(ErrorLevel, format, args...)
}

// Fatal logs a message at ErrorLevel and exits
func Fatal(format string, args ...interface{}) {
	if defaultLogger == nil {
		log.Fatalf("[FATAL] "+format, args...)
	}
	defaultLogger.write(ErrorLevel, "[FATAL] "+format, args...)
	os.Exit(1)
}
