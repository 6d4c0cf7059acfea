package logging

import (
	"context"
	"log/slog"

	context_ "github.com/mkrupp/storefront/internal/infra/context"
)

// ContextHandler wraps another slog.Handler and copies request-scoped values
// (trace id, session user id) from the context onto every record.
type ContextHandler struct {
	h slog.Handler
}

var _ slog.Handler = (*ContextHandler)(nil)

// NewContextHandler creates a new ContextHandler wrapping the given handler.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{h: h}
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		r.AddAttrs(slog.Group("trace", slog.String("id", traceID)))
	}

	if userID, ok := context_.UserIDFromContext(ctx); ok {
		r.AddAttrs(slog.Group("session", slog.String("user", userID)))
	}

	//nolint:wrapcheck
	return h.h.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) Handler {
	return NewContextHandler(h.h.WithAttrs(attrs))
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ContextHandler) WithGroup(name string) Handler {
	return NewContextHandler(h.h.WithGroup(name))
}

// Enabled implements slog.Handler.Enabled.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}
