package avatarsvc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/tiff"

	"github.com/mkrupp/storefront/internal/domain"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeTIFF = "image/tiff"
)

//nolint:gochecknoglobals
var (
	imageExtTypes = map[string]string{
		".jpg":  MIMETypeJPEG,
		".jpeg": MIMETypeJPEG,
		".png":  MIMETypePNG,
		".tiff": MIMETypeTIFF,
		".tif":  MIMETypeTIFF,
	}

	imageMagic = map[string][]string{
		MIMETypeJPEG: {"\xFF\xD8"},
		MIMETypePNG:  {"\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"},
		MIMETypeTIFF: {"\x49\x49\x2A\x00", "\x4D\x4D\x00\x2A"},
	}

	imageDecoders = map[string]func(io.Reader) (image.Image, error){
		MIMETypeJPEG: jpeg.Decode,
		MIMETypeTIFF: tiff.Decode,
		MIMETypePNG:  png.Decode,
	}

	imageEncoders = map[string]func(io.Writer, image.Image) error{
		MIMETypeJPEG: func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, &jpeg.Options{Quality: 90}) },
		MIMETypeTIFF: func(w io.Writer, i image.Image) error {
			return tiff.Encode(w, i, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		},
		MIMETypePNG: png.Encode,
	}
)

// hasMagic reports whether data starts with one of the signatures of mimeType.
func hasMagic(data []byte, mimeType string) bool {
	for _, header := range imageMagic[mimeType] {
		if bytes.HasPrefix(data, []byte(header)) {
			return true
		}
	}

	return false
}

// detectType sniffs the MIME type of stored picture data.
func detectType(data []byte) (string, error) {
	for _, mimeType := range []string{MIMETypeJPEG, MIMETypePNG, MIMETypeTIFF} {
		if hasMagic(data, mimeType) {
			return mimeType, nil
		}
	}

	return "", domain.ErrImageTypeNotSupported
}

func getDecoderByType(mimeType string) (func(io.Reader) (image.Image, error), error) {
	decoder, ok := imageDecoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrImageTypeNotSupported, mimeType)
	}

	return decoder, nil
}

func getEncoderByType(mimeType string) (func(io.Writer, image.Image) error, error) {
	encoder, ok := imageEncoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrImageTypeNotSupported, mimeType)
	}

	return encoder, nil
}
