package domain

import (
	"bytes"
	"fmt"
	"io"
)

// Blob is a stored binary object, such as a scaled profile picture.
type Blob struct {
	ID   BlobID
	Body []byte
}

func NewBlob(id BlobID, body []byte) *Blob {
	return &Blob{ID: id, Body: body}
}

// Size is the length of Body in bytes.
func (blob *Blob) Size() int64 {
	return int64(len(blob.Body))
}

// WriteTo implements io.WriterTo. A short write is reported as io.ErrShortWrite.
func (blob *Blob) WriteTo(w io.Writer) (int64, error) {
	n, err := bytes.NewReader(blob.Body).WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write blob %s: %w", blob.ID, err)
	}

	return n, nil
}
