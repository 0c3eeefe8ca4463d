// Package obs holds logging setup and request-scoped log context.
package obs

import (
    "context"
    "io"
    "log/slog"
    "os"
    "strings"
    "time"

    "github.com/lmittmann/tint"
)

// NewLogger configures a colourful tint handler for dev environments and
// JSON everywhere else.
func NewLogger(env string) *slog.Logger {
    return newLogger(os.Stdout, env, slog.LevelInfo)
}

func newLogger(w io.Writer, env string, level slog.Level) *slog.Logger {
    switch strings.ToLower(env) {
    case "dev", "local", "development":
        return slog.New(tint.NewHandler(w, &tint.Options{
            Level:      level,
            TimeFormat: time.RFC3339,
            AddSource:  true,
        }))
    }
    return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
        Level:     level,
        AddSource: true,
    }))
}

type requestIDKey struct{}

// WithRequestID stores id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
    return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
    if s, ok := ctx.Value(requestIDKey{}).(string); ok {
        return s
    }
    return ""
}

// Logger returns base annotated with the request id carried by ctx, if any.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
    if id := RequestIDFromContext(ctx); id != "" {
        return base.With("request_id", id)
    }
    return base
}
