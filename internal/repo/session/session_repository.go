package session

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository persists the current session: the cached user and its token.
type Repository interface {
	// GetCurrentUser returns the cached session user and true, or nil and false if none is cached.
	GetCurrentUser(ctx context.Context) (*domain.User, bool, error)

	// GetAuthToken returns the persisted token and true, or "" and false if none is persisted.
	GetAuthToken(ctx context.Context) (string, bool, error)

	// Save persists both the session user and the token.
	Save(ctx context.Context, user domain.User, token string) error

	// SaveCurrentUser replaces the cached session user and keeps the token.
	SaveCurrentUser(ctx context.Context, user domain.User) error

	// Clear removes the session user and the token. Clearing an empty session is not an error.
	Clear(ctx context.Context) error

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func(ctx context.Context) (Repository, error)
