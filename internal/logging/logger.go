package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a --log-level value onto a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q (expected debug, info, warn, error)", s)
	}
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// FsbuildLogger implements structured logging on top of log/slog.
type FsbuildLogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	fields    map[string]interface{}
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig returns default logger configuration. Logs go to stderr so
// the size report on stdout stays readable when piped.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// NewLogger creates a new structured logger
func NewLogger(config *LoggerConfig) *FsbuildLogger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     slog.Level((int(config.Level) - 1) * 4), // LevelInfo maps to slog.LevelInfo
		AddSource: config.AddSource,
	}

	if config.Format == "json" {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}

	return &FsbuildLogger{
		logger:    slog.New(handler),
		level:     config.Level,
		component: config.Component,
		fields:    make(map[string]interface{}),
	}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *FsbuildLogger {
	return NewLogger(&LoggerConfig{Level: LevelError + 1, Output: io.Discard})
}

// Debug logs a debug message
func (l *FsbuildLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	if l.level > LevelDebug {
		return
	}
	l.log(ctx, slog.LevelDebug, nil, msg, fields...)
}

// Info logs an info message
func (l *FsbuildLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	if l.level > LevelInfo {
		return
	}
	l.log(ctx, slog.LevelInfo, nil, msg, fields...)
}

// Warn logs a warning message
func (l *FsbuildLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	if l.level > LevelWarn {
		return
	}
	l.log(ctx, slog.LevelWarn, err, msg, fields...)
}

// Error logs an error message
func (l *FsbuildLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	if l.level > LevelError {
		return
	}
	l.log(ctx, slog.LevelError, err, msg, fields...)
}

// With creates a new logger with additional fields
func (l *FsbuildLogger) With(fields ...interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields)/2)
	for k, v := range l.fields {
		newFields[k] = v
	}

	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			newFields[key] = fields[i+1]
		}
	}

	return &FsbuildLogger{
		logger:    l.logger,
		level:     l.level,
		component: l.component,
		fields:    newFields,
	}
}

// WithComponent creates a new logger with component context
func (l *FsbuildLogger) WithComponent(component string) Logger {
	return &FsbuildLogger{
		logger:    l.logger,
		level:     l.level,
		component: component,
		fields:    l.fields,
	}
}

func (l *FsbuildLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields ...interface{}) {
	attrs := make([]slog.Attr, 0, len(l.fields)+len(fields)/2+2)

	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	for k, v := range l.fields {
		attrs = append(attrs, slog.Any(k, v))
	}

	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			attrs = append(attrs, slog.Any(key, fields[i+1]))
		}
	}

	record := slog.NewRecord(time.Now(), level, msg, 0)
	record.AddAttrs(attrs...)

	_ = l.logger.Handler().Handle(ctx, record)
}

// PerfLogger tracks how long an operation took
type PerfLogger struct {
	Logger
	startTime time.Time
	operation string
}

// StartOperation begins performance tracking
func StartOperation(logger Logger, operation string) *PerfLogger {
	return &PerfLogger{
		Logger:    logger.With("operation", operation),
		startTime: time.Now(),
		operation: operation,
	}
}

// End completes performance tracking and logs the duration
func (p *PerfLogger) End(ctx context.Context) {
	duration := time.Since(p.startTime)
	p.Debug(ctx, "Operation completed",
		"duration_ms", duration.Milliseconds(),
	)
}

// EndWithError completes performance tracking and logs an error
func (p *PerfLogger) EndWithError(ctx context.Context, err error) {
	duration := time.Since(p.startTime)
	p.Error(ctx, err, "Operation failed",
		"duration_ms", duration.Milliseconds(),
	)
}
