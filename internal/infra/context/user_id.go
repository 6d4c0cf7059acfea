package context

import "context"

// UserIDFromContext returns the id of the user whose session authorized the request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, contextKeyUserID)
}

// WithUserID records the authorized user id; set by the authorizing middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}
