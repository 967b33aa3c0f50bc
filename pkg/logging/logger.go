// Package logging wraps log/slog with a JSON handler, the service's base
// attributes and helpers for the log lines every component emits.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is the textual level accepted by LOG_LEVEL
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration
type Config struct {
	Level       LogLevel
	ServiceName string
	Environment string
	Version     string
	Output      io.Writer
	AddSource   bool
}

// DefaultConfig logs at info to stdout. Environment and version come from
// ENVIRONMENT and VERSION.
func DefaultConfig(serviceName string) *Config {
	return &Config{
		Level:       LevelInfo,
		ServiceName: serviceName,
		Environment: envOr("ENVIRONMENT", "development"),
		Version:     envOr("VERSION", "unknown"),
		Output:      os.Stdout,
	}
}

// Logger is a slog.Logger whose records carry the ids found on the context
// passed to the *Context logging methods.
type Logger struct {
	*slog.Logger
}

// New builds a JSON logger tagged with service, environment and version
func New(config *Config) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	json := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level:       parseLevel(config.Level),
		AddSource:   config.AddSource,
		ReplaceAttr: utcTime,
	})
	handler := contextHandler{Handler: json}

	return &Logger{Logger: slog.New(handler).With(
		"service", config.ServiceName,
		"environment", config.Environment,
		"version", config.Version,
	)}
}

// NewNop discards everything
func NewNop() *Logger {
	return New(&Config{Level: LevelError, ServiceName: "nop", Output: io.Discard})
}

func parseLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
		}
	}
	return a
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithError attaches err as the "error" attribute; nil is ignored
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.with("error", err.Error())
}

// WithComponent tags lines with the emitting component, e.g. "site-cache"
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// DatabaseQuery logs a store operation; failures at error, successes at debug
func (l *Logger) DatabaseQuery(ctx context.Context, collection, operation string, duration time.Duration, success bool) {
	level := slog.LevelDebug
	if !success {
		level = slog.LevelError
	}
	l.Log(ctx, level, "Database query",
		"collection", collection,
		"operation", operation,
		"durationMs", duration.Milliseconds(),
		"success", success,
	)
}

// KafkaPublish logs one event publish
func (l *Logger) KafkaPublish(ctx context.Context, topic, eventType string, success bool, duration time.Duration) {
	level := slog.LevelDebug
	if !success {
		level = slog.LevelError
	}
	l.Log(ctx, level, "Kafka publish",
		"topic", topic,
		"eventType", eventType,
		"success", success,
		"durationMs", duration.Milliseconds(),
	)
}

// ExternalCall logs a call to geocoding, cargo or the sites source. Failures
// are warnings because callers degrade instead of failing the request.
func (l *Logger) ExternalCall(ctx context.Context, collaborator, operation string, duration time.Duration, err error) {
	attrs := []any{
		"collaborator", collaborator,
		"operation", operation,
		"durationMs", duration.Milliseconds(),
	}
	if err != nil {
		l.Log(ctx, slog.LevelWarn, "External call failed", append(attrs, "error", err.Error())...)
		return
	}
	l.Log(ctx, slog.LevelDebug, "External call", attrs...)
}

// CacheRefresh logs the outcome of a site cache refresh
func (l *Logger) CacheRefresh(ctx context.Context, sites, changed, relinked int, duration time.Duration) {
	l.Log(ctx, slog.LevelInfo, "Site cache refreshed",
		"sites", sites,
		"changedSites", changed,
		"relinkedPickupPoints", relinked,
		"durationMs", duration.Milliseconds(),
	)
}

// SetDefault makes l the process-wide slog logger
func (l *Logger) SetDefault() {
	slog.SetDefault(l.Logger)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
