package context

import "context"

// contextKey keeps this package's context values from colliding with other packages.
type contextKey string

const (
	contextKeyTraceID = contextKey("traceID")
	contextKeyUserID  = contextKey("userID")
)

// stringValue reads a non-empty string stored under key.
func stringValue(ctx context.Context, key contextKey) (string, bool) {
	value, ok := ctx.Value(key).(string)
	if !ok || value == "" {
		return "", false
	}

	return value, true
}
