// Package logging builds the application's slog logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type requestIDKey struct{}

// ParseLevel converts a configured level name into a slog.Level. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to w. Production gets JSON output, everything else text.
func New(w io.Writer, production bool, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if production {
		return slog.New(contextHandler{slog.NewJSONHandler(w, opts)})
	}

	return slog.New(contextHandler{slog.NewTextHandler(w, opts)})
}

// WithRequestID returns a copy of ctx carrying the request id. Loggers built by New add it to every record
// logged with that context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}

// contextHandler adds the request id from the record's context.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("requestID", id))
	}

	return h.Handler.Handle(ctx, r) //nolint:wrapcheck // passthrough
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

// ErrAttr creates a new attribute with the key "err" and the given error value.
func ErrAttr(err error) slog.Attr { return slog.Any("err", err) }
