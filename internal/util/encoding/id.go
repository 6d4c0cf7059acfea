package encoding

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns prefix followed by a lowercase Crockford rendering of a fresh UUIDv7.
// IDs generated later sort after earlier ones.
func NewID(prefix string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new uuid: %w", err)
	}

	return prefix + EncodeCrockfordB32LC(id[:]), nil
}
