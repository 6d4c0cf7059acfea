package context

import "context"

// TraceIDFromContext returns the trace id of the request ctx belongs to, if one was assigned.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, contextKeyTraceID)
}

// WithTraceID tags ctx with the trace id the tracing middleware assigned or received in X-Request-ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKeyTraceID, traceID)
}
