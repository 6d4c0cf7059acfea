package domain

import (
	"errors"
	"time"
)

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrTokenInvalid is returned when a token cannot be decoded or does not belong to the session.
	ErrTokenInvalid = errors.New("invalid auth token")
	// ErrTokenExpired is returned when a token is older than the maximum session age.
	ErrTokenExpired = errors.New("auth token expired")
	// ErrNotAuthenticated is returned when an operation requires a session and there is none.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AuthToken is the payload of a session token. It is encoded but not signed, so it
// only marks session continuity and expiry.
type AuthToken struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	IssuedAt int64  `json:"timestamp"` // Unix milliseconds
}

// IssuedTime returns the issue timestamp as a time.Time.
func (t AuthToken) IssuedTime() time.Time {
	return time.UnixMilli(t.IssuedAt)
}

// Age returns how long ago the token was issued relative to now.
func (t AuthToken) Age(now time.Time) time.Duration {
	return now.Sub(t.IssuedTime())
}

// AuthTokenResponse represents a response containing an authentication token.
type AuthTokenResponse struct {
	Token string `json:"token"`
}
