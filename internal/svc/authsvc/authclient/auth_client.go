package authclient

import (
	"context"
	"errors"
)

// AuthClient validates bearer tokens on behalf of guarded routes.
type AuthClient interface {
	// Validate returns the id of the session user the token belongs to.
	// A rejected token yields domain.ErrTokenInvalid, domain.ErrTokenExpired or
	// domain.ErrNotAuthenticated; any other error means validation could not be performed.
	Validate(ctx context.Context, token string) (string, error)
}

// ErrUnexpectedStatus is returned when the remote validate endpoint answers with neither 200 nor 401.
var ErrUnexpectedStatus = errors.New("unexpected status")
