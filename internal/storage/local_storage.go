package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// LocalImageFetcher serves file:// references from a root directory
type LocalImageFetcher struct {
	root string
}

// NewLocalImageFetcher creates a fetcher confined to root
func NewLocalImageFetcher(root string) (*LocalImageFetcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve image root: %w", err)
	}
	return &LocalImageFetcher{root: abs}, nil
}

// Resolve maps a file:// reference to a path under the root. Paths never
// escape the root; ".." components are resolved against it.
func (l *LocalImageFetcher) Resolve(fileURL string) (string, error) {
	parsedURL, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("invalid file URL: %w", err)
	}
	if parsedURL.Scheme != "file" {
		return "", fmt.Errorf("invalid file URL: unexpected scheme %q", parsedURL.Scheme)
	}

	// file://name.jpg puts the first segment in the host
	rel := path.Join("/", parsedURL.Host, parsedURL.Path)
	if rel == "/" {
		return "", fmt.Errorf("invalid file URL: missing path")
	}
	return filepath.Join(l.root, filepath.FromSlash(rel)), nil
}

// FetchImage opens and decodes the referenced file
func (l *LocalImageFetcher) FetchImage(ctx context.Context, fileURL string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, err := l.Resolve(fileURL)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Open(name, imaging.AutoOrientation(true))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fileURL)
		}
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
