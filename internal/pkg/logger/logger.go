// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey represents keys for context values
type ContextKey string

const (
	// Context keys for logging
	ContextKeyRequestID  ContextKey = "request_id"
	ContextKeyTraceID    ContextKey = "trace_id"
	ContextKeyClientIP   ContextKey = "client_ip"
	ContextKeyUserAgent  ContextKey = "user_agent"
	ContextKeyMethod     ContextKey = "method"
	ContextKeyPath       ContextKey = "path"
	ContextKeyStatusCode ContextKey = "status_code"
	ContextKeyDuration   ContextKey = "duration_ms"
)

// LogConfig holds logger configuration
type LogConfig struct {
	Level          string `json:"level"`
	Format         string `json:"format"`
	Output         string `json:"output"`
	AddSource      bool   `json:"add_source"`
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`
	Environment    string `json:"environment"`
}

// Logger wraps slog.Logger with context-aware helpers
type Logger struct {
	*slog.Logger
	config *LogConfig
}

var defaultLogger *Logger

// SetupLogger initializes the logger and installs it as slog's default
func SetupLogger(level string, format string) *Logger {
	config := &LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      level == "debug",
		ServiceName:    os.Getenv("SERVICE_NAME"),
		ServiceVersion: os.Getenv("SERVICE_VERSION"),
		Environment:    os.Getenv("APP_ENV"),
	}

	logger := NewLogger(config)
	defaultLogger = logger
	slog.SetDefault(logger.Logger)

	return logger
}

// NewLogger creates a new logger from config
func NewLogger(config *LogConfig) *Logger {
	if config == nil {
		config = &LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		}
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(config.Level),
		AddSource: config.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
				}
			}
			return a
		},
	}

	writer := getWriter(config.Output)

	var handler slog.Handler
	switch config.Format {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	handler = NewContextHandler(handler)

	attrs := []slog.Attr{}
	if config.ServiceName != "" {
		attrs = append(attrs, slog.String("service", config.ServiceName))
	}
	if config.ServiceVersion != "" {
		attrs = append(attrs, slog.String("version", config.ServiceVersion))
	}
	if config.Environment != "" {
		attrs = append(attrs, slog.String("env", config.Environment))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	return &Logger{
		Logger: slog.New(handler),
		config: config,
	}
}

// WithContext creates a logger with context values attached as attributes
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	attrs := extractContextAttrs(ctx)
	if len(attrs) > 0 {
		return l.Logger.With(attrs...)
	}
	return l.Logger
}

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// ContextHandler copies known context values onto every record.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler wraps a handler with context extraction
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	contextAttrs := extractContextAttrs(ctx)
	if len(contextAttrs) == 0 {
		return h.handler.Handle(ctx, record)
	}

	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		newRecord.AddAttrs(a)
		return true
	})
	for _, attr := range contextAttrs {
		if a, ok := attr.(slog.Attr); ok {
			newRecord.AddAttrs(a)
		}
	}

	return h.handler.Handle(ctx, newRecord)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

// Helper functions

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getWriter(output string) io.Writer {
	switch output {
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		if strings.HasPrefix(output, "file:") {
			filename := strings.TrimPrefix(output, "file:")
			file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return os.Stdout
			}
			return file
		}
		return os.Stdout
	}
}

func contextKeys() []ContextKey {
	return []ContextKey{
		ContextKeyRequestID,
		ContextKeyTraceID,
		ContextKeyClientIP,
		ContextKeyUserAgent,
		ContextKeyMethod,
		ContextKeyPath,
		ContextKeyStatusCode,
		ContextKeyDuration,
	}
}

func extractContextAttrs(ctx context.Context) []any {
	attrs := []any{}

	for _, key := range contextKeys() {
		if val := ctx.Value(key); val != nil {
			keyStr := string(key)
			switch v := val.(type) {
			case string:
				if v != "" {
					attrs = append(attrs, slog.String(keyStr, v))
				}
			case int:
				attrs = append(attrs, slog.Int(keyStr, v))
			case time.Duration:
				attrs = append(attrs, slog.Duration(keyStr, v))
			case uuid.UUID:
				attrs = append(attrs, slog.String(keyStr, v.String()))
			default:
				attrs = append(attrs, slog.Any(keyStr, v))
			}
		}
	}

	return attrs
}
