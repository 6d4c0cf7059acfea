package domain

import "errors"

var (
	ErrImageTypeNotSupported = errors.New("image type not supported")
	ErrImageTypeMismatch     = errors.New("image ext does not match content type")
	ErrImageTooLarge         = errors.New("image too large")
	ErrNoProfilePicture      = errors.New("no profile picture")
)

// ProfilePicture is a stored, already resized profile image.
type ProfilePicture struct {
	UserID   string
	MIMEType string
	Data     []byte
}
