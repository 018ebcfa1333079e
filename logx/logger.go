package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// OutputFormat defines the log output format
type OutputFormat string

const (
	FormatConsole    OutputFormat = "console"
	FormatCloudWatch OutputFormat = "cloudwatch"
	FormatJSON       OutputFormat = "json"
)

// ParseFormat maps a LOG_FORMAT value to an OutputFormat, console by default
func ParseFormat(s string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "cloudwatch":
		return FormatCloudWatch
	default:
		return FormatConsole
	}
}

// Logger represents a logger instance. It is safe for concurrent use.
type Logger struct {
	mu         sync.Mutex
	level      Level
	out        io.Writer
	prefix     string
	showCaller bool
	colored    bool
	format     OutputFormat
	now        func() time.Time
}

// New creates a logger writing to stderr. Stdout is left alone because the
// MCP stdio transport owns it.
func New() *Logger {
	return &Logger{
		level:      InfoLevel,
		out:        os.Stderr,
		showCaller: true,
		colored:    true,
		format:     FormatConsole,
		now:        time.Now,
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output destination
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// SetPrefix sets a prefix for all log messages
func (l *Logger) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = prefix
}

// SetShowCaller enables or disables showing caller information
func (l *Logger) SetShowCaller(show bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showCaller = show
}

// SetColored enables or disables colored output
func (l *Logger) SetColored(colored bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colored = colored
}

// SetFormat sets the output format. CloudWatch and JSON are never colored.
func (l *Logger) SetFormat(format OutputFormat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
	if format != FormatConsole {
		l.colored = false
	}
}

// IsLevelEnabled checks if a level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level && l.level != OffLevel
}

// findCaller finds the first caller outside of the logx package
func findCaller() string {
	for i := 2; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(filepath.ToSlash(file), "/logx/") && !strings.HasSuffix(file, "_test.go") {
			continue
		}
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return ""
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if !l.IsLevelEnabled(level) {
		return
	}

	message := msg
	if len(args) > 0 {
		message = fmt.Sprintf(msg, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var caller string
	if l.showCaller {
		caller = findCaller()
	}

	switch l.format {
	case FormatJSON:
		entry := map[string]any{
			"timestamp": l.now().Format(time.RFC3339),
			"level":     level.String(),
			"message":   message,
		}
		if l.prefix != "" {
			entry["prefix"] = l.prefix
		}
		if caller != "" {
			entry["caller"] = caller
		}
		if data, err := json.Marshal(entry); err == nil {
			fmt.Fprintln(l.out, string(data))
		}
	case FormatCloudWatch:
		fmt.Fprintln(l.out, l.line(l.now().UTC().Format("2006-01-02T15:04:05.000Z"), level.String(), caller, message))
	default:
		levelStr := level.String()
		if l.colored {
			levelStr = level.Colorize()
		}
		fmt.Fprintln(l.out, l.line(l.now().Format("2006-01-02 15:04:05"), levelStr, caller, message))
	}
}

func (l *Logger) line(timestamp, level, caller, message string) string {
	if caller != "" {
		caller = " " + caller
	}
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s [%s]%s: %s", timestamp, l.prefix, level, caller, message)
	}
	return fmt.Sprintf("[%s] [%s]%s: %s", timestamp, level, caller, message)
}

// Trace logs a message at trace level
func (l *Logger) Trace(msg string, args ...any) {
	l.log(TraceLevel, msg, args...)
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, args ...any) {
	l.log(DebugLevel, msg, args...)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, args ...any) {
	l.log(InfoLevel, msg, args...)
}

// Warn logs a message at warn level
func (l *Logger) Warn(msg string, args ...any) {
	l.log(WarnLevel, msg, args...)
}

// Error logs a message at error level
func (l *Logger) Error(msg string, args ...any) {
	l.log(ErrorLevel, msg, args...)
}

// Fatal logs a message at error level and exits
func (l *Logger) Fatal(msg string, args ...any) {
	l.log(ErrorLevel, msg, args...)
	os.Exit(1)
}

// Writer returns an io.Writer that logs each written line at the given level.
// It lets libraries that take a *log.Logger share this logger's output.
func (l *Logger) Writer(level Level) io.Writer {
	return levelWriter{logger: l, level: level}
}

type levelWriter struct {
	logger *Logger
	level  Level
}

func (w levelWriter) Write(p []byte) (int, error) {
	w.logger.log(w.level, "%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
