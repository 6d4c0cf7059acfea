package avatarsvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method is configured.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

//nolint:gochecknoglobals
var interpolators = map[string]draw.Interpolator{
	"nearestneighbor": draw.NearestNeighbor,
	"catmullrom":      draw.CatmullRom,
	"bilinear":        draw.BiLinear,
	"approxbilinear":  draw.ApproxBiLinear,
}

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpolator, ok := interpolators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpolator, nil
}

// scaleDown re-encodes data at most maxWidth pixels wide, keeping the aspect ratio.
// Pictures already narrow enough are returned unchanged.
func scaleDown(data []byte, mimeType string, maxWidth int, interpolator draw.Interpolator) ([]byte, error) {
	decoder, err := getDecoderByType(mimeType)
	if err != nil {
		return nil, err
	}

	original, err := decoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := original.Bounds()
	if bounds.Dx() <= maxWidth {
		return data, nil
	}

	height := max(1, bounds.Dy()*maxWidth/bounds.Dx())
	bitmap := image.NewRGBA(image.Rect(0, 0, maxWidth, height))

	interpolator.Scale(bitmap, bitmap.Bounds(), original, bounds, draw.Over, nil)

	encoder, err := getEncoderByType(mimeType)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := encoder(&out, bitmap); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return out.Bytes(), nil
}
