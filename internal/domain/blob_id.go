package domain

// BlobID is a string-based identifier for blob objects.
type BlobID string

// String returns the string representation of the BlobID.
func (id BlobID) String() string {
	return string(id)
}

// ProfilePictureBlobID is the blob a user's profile picture is stored under.
func ProfilePictureBlobID(userID string) BlobID {
	return BlobID("profilepic_" + userID)
}
