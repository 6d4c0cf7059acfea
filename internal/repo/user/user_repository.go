package user

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository defines the interface for user record persistence.
type Repository interface {
	// CreateUser adds a new user record.
	// Returns ErrDuplicateEmail or ErrDuplicatePhone if another record already uses either.
	CreateUser(ctx context.Context, user domain.UserRecord) error

	// GetUserByID retrieves a user by id.
	// Returns the record and true if found, or nil and false if not found.
	GetUserByID(ctx context.Context, id string) (*domain.UserRecord, bool, error)

	// GetUserByEmail retrieves a user by exact email address.
	GetUserByEmail(ctx context.Context, email string) (*domain.UserRecord, bool, error)

	// GetUserByPhoneNumber retrieves a user by exact phone number.
	GetUserByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.UserRecord, bool, error)

	// ListUsers returns every record in registration order.
	ListUsers(ctx context.Context) ([]domain.UserRecord, error)

	// UpdateUser applies fn to the record with the given id and persists the result.
	// Nothing is written if fn fails or the change would break email/phone uniqueness.
	// Returns ErrUserNotFound if no record has the id.
	UpdateUser(ctx context.Context, id string, fn func(*domain.UserRecord) error) (*domain.UserRecord, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func(ctx context.Context) (Repository, error)
