package blob

import (
	"context"
	"errors"

	"github.com/mkrupp/storefront/internal/domain"
)

// ErrBlobNotFound is joined to errors about blobs that do not exist.
var ErrBlobNotFound = errors.New("blob not found")

// Repository defines the interface for blob storage operations.
type Repository interface {
	// Exists checks if a blob with the given ID exists.
	Exists(ctx context.Context, id domain.BlobID) bool

	// Store persists a blob, replacing any blob with the same ID.
	// Readers never observe a partially written blob.
	Store(ctx context.Context, blob *domain.Blob) error

	// Fetch retrieves a blob by its ID.
	// Returns an error matching ErrBlobNotFound if there is none.
	Fetch(ctx context.Context, id domain.BlobID) (*domain.Blob, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, id domain.BlobID) error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Parameters:
// - name: subdirectory name for the repository
// - ext: file extension for stored blobs
type RepositoryFactory func(
	ctx context.Context,
	name string,
	ext string,
) (Repository, error)
