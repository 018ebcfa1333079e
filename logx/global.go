package logx

import (
	"io"
	"os"
	"strings"
)

var defaultLogger *Logger

func init() {
	defaultLogger = New()
	Configure(os.Getenv)
}

// Configure applies LOG_LEVEL, LOG_FORMAT, LOG_COLOR and LOG_CALLER to the
// default logger. getenv is usually os.Getenv; callers that load a .env file
// pass a lookup over the merged settings instead.
func Configure(getenv func(string) string) {
	if logLevel := getenv("LOG_LEVEL"); logLevel != "" {
		if level, err := ParseLevel(logLevel); err == nil {
			defaultLogger.SetLevel(level)
		}
	}

	if format := getenv("LOG_FORMAT"); format != "" {
		defaultLogger.SetFormat(ParseFormat(format))
	}

	// LOG_COLOR=false disables colors
	if colorEnv := getenv("LOG_COLOR"); colorEnv != "" {
		defaultLogger.SetColored(strings.ToLower(colorEnv) != "false")
	}

	// LOG_CALLER=false hides file:line
	if callerEnv := getenv("LOG_CALLER"); callerEnv != "" {
		defaultLogger.SetShowCaller(strings.ToLower(callerEnv) != "false")
	}
}

// SetLevel sets the global log level
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// SetPrefix sets the global log prefix
func SetPrefix(prefix string) {
	defaultLogger.SetPrefix(prefix)
}

// SetOutput sets the global output destination
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// SetFormat sets the global log format
func SetFormat(format OutputFormat) {
	defaultLogger.SetFormat(format)
}

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	return defaultLogger
}

func Trace(msg string, args ...any) {
	defaultLogger.Trace(msg, args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	defaultLogger.Fatal(msg, args...)
}

// IsLevelEnabled checks if a level is enabled globally
func IsLevelEnabled(level Level) bool {
	return defaultLogger.IsLevelEnabled(level)
}
