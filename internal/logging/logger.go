package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kyleking/filter-flow/internal/config"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

const (
	logDirPerm  = 0755
	logFilePerm = 0644

	callerSkip = 3
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger provides structured logging capabilities
type Logger struct {
	level      LogLevel
	format     string
	output     io.Writer
	file       *os.File
	mu         *sync.Mutex
	fields     map[string]interface{}
	showCaller bool
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// InitializeLogger builds a logger from cfg and installs it as the global logger
func InitializeLogger(cfg config.LoggingConfig) (*Logger, error) {
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	SetLogger(logger)

	return logger, nil
}

// NewLogger creates a new logger with the given configuration
func NewLogger(cfg config.LoggingConfig) (*Logger, error) {
	var (
		output io.Writer
		file   *os.File
	)

	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	case "file":
		if cfg.File == "" {
			return nil, errors.New("log file path is required when output is 'file'")
		}

		if err := os.MkdirAll(filepath.Dir(cfg.File), logDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		file = f
		output = f
	default:
		return nil, fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	logger := NewLoggerWithWriter(cfg, output)
	logger.file = file

	return logger, nil
}

// NewLoggerWithWriter creates a logger that writes to w, ignoring cfg.Output
func NewLoggerWithWriter(cfg config.LoggingConfig, w io.Writer) *Logger {
	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "text"
	}

	level := parseLogLevel(cfg.Level)

	return &Logger{
		level:      level,
		format:     format,
		output:     w,
		mu:         &sync.Mutex{},
		fields:     make(map[string]interface{}),
		showCaller: cfg.AddSource || level == DebugLevel,
	}
}

// parseLogLevel parses a string log level into LogLevel
func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Level returns the minimum level the logger writes
func (l *Logger) Level() LogLevel {
	return l.level
}

// WithField returns a child logger carrying one more field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a child logger carrying the given fields.
// Children share the parent's output and lock.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	child := &Logger{
		level:      l.level,
		format:     l.format,
		output:     l.output,
		file:       l.file,
		mu:         l.mu,
		fields:     make(map[string]interface{}, len(l.fields)+len(fields)),
		showCaller: l.showCaller,
	}

	for k, v := range l.fields {
		child.fields[k] = v
	}

	for k, v := range fields {
		child.fields[k] = v
	}

	return child
}

// WithError adds an error to the logger context
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	return l.WithField("error", err.Error())
}

func (l *Logger) log(level LogLevel, message string, err error) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
	}

	if len(l.fields) > 0 {
		entry.Fields = l.fields
	}

	if err != nil {
		entry.Error = err.Error()
	}

	if l.showCaller {
		entry.Caller = getCaller()
	}

	var output string

	if l.format == "json" {
		data, _ := json.Marshal(entry)
		output = string(data)
	} else {
		output = formatText(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.output, output)
}

// formatText formats a log entry as human-readable text with sorted fields
func formatText(entry LogEntry) string {
	parts := []string{fmt.Sprintf("[%s] %s", entry.Timestamp, entry.Level)}

	if entry.Caller != "" {
		parts = append(parts, fmt.Sprintf("(%s)", entry.Caller))
	}

	parts = append(parts, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}

		parts = append(parts, fmt.Sprintf("{%s}", strings.Join(fieldParts, " ")))
	}

	if entry.Error != "" {
		parts = append(parts, "error="+entry.Error)
	}

	return strings.Join(parts, " ")
}

func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkip)
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// Debug logs a debug message
func (l *Logger) Debug(message string) {
	l.log(DebugLevel, message, nil)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Info logs an info message
func (l *Logger) Info(message string) {
	l.log(InfoLevel, message, nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warn logs a warning message
func (l *Logger) Warn(message string) {
	l.log(WarnLevel, message, nil)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(format, args...), nil)
}

// Error logs an error message
func (l *Logger) Error(message string) {
	l.log(ErrorLevel, message, nil)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// ErrorWithErr logs an error message with an associated error
func (l *Logger) ErrorWithErr(message string, err error) {
	l.log(ErrorLevel, message, err)
}

// Close closes the logger and any associated resources
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}

	return nil
}

// SetLogger replaces the global logger
func SetLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalLogger = l
}

// GetLogger returns the global logger, installing a fallback when none is set
func GetLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()

	if l != nil {
		return l
	}

	SetupFallbackLogger()

	globalMu.RLock()
	defer globalMu.RUnlock()

	return globalLogger
}

// SetupFallbackLogger sets up a basic logger for cases where configuration fails
func SetupFallbackLogger() {
	SetLogger(NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, os.Stderr))
}

// Debugf logs a formatted debug message using the global logger
func Debugf(format string, args ...interface{}) {
	GetLogger().Debugf(format, args...)
}

// Infof logs a formatted info message using the global logger
func Infof(format string, args ...interface{}) {
	GetLogger().Infof(format, args...)
}

// Warnf logs a formatted warning message using the global logger
func Warnf(format string, args ...interface{}) {
	GetLogger().Warnf(format, args...)
}

// ErrorWithErr logs an error message with an associated error using the global logger
func ErrorWithErr(message string, err error) {
	GetLogger().ErrorWithErr(message, err)
}

// WithField adds a field to the global logger context
func WithField(key string, value interface{}) *Logger {
	return GetLogger().WithField(key, value)
}

// WithFields adds multiple fields to the global logger context
func WithFields(fields map[string]interface{}) *Logger {
	return GetLogger().WithFields(fields)
}

// Timed runs fn, logging its duration and outcome under the given operation name
func Timed(operation string, fn func() error) error {
	logger := WithField("operation", operation)
	logger.Debug("Starting operation")

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if err != nil {
		logger.WithField("duration", duration).ErrorWithErr("Operation failed", err)
	} else {
		logger.WithField("duration", duration).Debug("Operation completed successfully")
	}

	return err
}
