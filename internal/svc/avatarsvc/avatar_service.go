package avatarsvc

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// AvatarService stores one profile picture per user.
type AvatarService interface {
	// Store validates, scales down and stores the picture for the user, replacing any previous one.
	// Returns the blob ID the picture is stored under.
	Store(ctx context.Context, userID string, filename string, data []byte) (domain.BlobID, error)

	// Fetch returns the user's picture or ErrNoProfilePicture.
	Fetch(ctx context.Context, userID string) (domain.ProfilePicture, error)

	// Delete removes the user's picture. Deleting a missing picture is not an error.
	Delete(ctx context.Context, userID string) error

	// CheckUploadConstraints checks size, extension and magic bytes of an upload.
	// Returns the detected MIME type.
	CheckUploadConstraints(filename string, data []byte) (string, error)
}
