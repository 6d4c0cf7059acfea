package cart

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository persists the cart lines between restarts.
type Repository interface {
	// Load returns the saved lines, or none if nothing was saved.
	Load(ctx context.Context) ([]domain.CartLine, error)

	// Save replaces the saved lines.
	Save(ctx context.Context, lines []domain.CartLine) error

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func(ctx context.Context) (Repository, error)
