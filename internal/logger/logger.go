// Package logger builds the process slog handler and carries request-scoped
// loggers through contexts.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

// Config holds the configuration of the logger.
type Config struct {
	Level  slog.Level
	Format string
}

// FromStrings parses LOG_LEVEL / LOG_FORMAT style values. Unknown levels fall
// back to info, unknown formats to text.
func FromStrings(level, format string) Config {
	cfg := Config{Level: slog.LevelInfo, Format: "text"}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "warn", "warning":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg.Format = "json"
	}
	return cfg
}

// New returns a JSON logger for "json" and a tint console logger otherwise.
func New(cfg Config, w io.Writer) *slog.Logger {
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: cfg.Level,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().UTC().Format(time.RFC3339))
				}
				return a
			},
		}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      cfg.Level,
		TimeFormat: time.Kitchen,
	}))
}

type ctxKey struct{}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or slog.Default when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// NewCorrelationID generates an id for requests that did not bring one.
func NewCorrelationID() string {
	return uuid.NewString()
}
