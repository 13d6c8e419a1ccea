package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImageBytes caps how much of a source is read before decoding
const MaxImageBytes = 64 << 20

// ErrNotFound indicates the referenced image does not exist at its source
var ErrNotFound = errors.New("image not found")

// ImageFetcher resolves an image reference to a decoded image
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)
}

// StatusError reports a non-200 response from an image source
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	switch {
	case e.StatusCode >= 500:
		return fmt.Sprintf("server error: status code %d", e.StatusCode)
	case e.StatusCode >= 400:
		return fmt.Sprintf("client error: status code %d", e.StatusCode)
	default:
		return fmt.Sprintf("unexpected status code %d", e.StatusCode)
	}
}

// Is makes a 404 match ErrNotFound
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// decode reads at most MaxImageBytes from r and decodes any registered
// format, applying EXIF orientation
func decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(io.LimitReader(r, MaxImageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
