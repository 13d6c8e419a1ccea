package repository

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"go-eye-sharpness/internal/storage"
	"go-eye-sharpness/pkg/validation"
)

// RoutingImageRepository implements ImageRepository by dispatching each
// reference to the fetcher for its source
type RoutingImageRepository struct {
	validator *validation.URLValidator
	fetchers  map[Source]storage.ImageFetcher
}

// NewRoutingImageRepository creates a repository over the given fetchers.
// An HTTP fetcher is required; Azure and local fetchers are optional.
// file:// references are only accepted when a local fetcher is present.
func NewRoutingImageRepository(validator *validation.URLValidator, fetchers map[Source]storage.ImageFetcher) (*RoutingImageRepository, error) {
	if fetchers[SourceHTTP] == nil {
		return nil, fmt.Errorf("%w: http fetcher is required", ErrSourceUnavailable)
	}
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	if fetchers[SourceLocal] != nil {
		validator = validator.WithLocalFiles()
	}

	return &RoutingImageRepository{
		validator: validator,
		fetchers:  fetchers,
	}, nil
}

// ValidateImageURL validates if the provided reference is acceptable
func (r *RoutingImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}

// SourceOf routes blob endpoint hosts to Azure when configured and file
// references to the local fetcher; everything else goes over HTTP
func (r *RoutingImageRepository) SourceOf(imageURL string) (Source, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImageURL, err)
	}

	switch {
	case parsedURL.Scheme == "file":
		if r.fetchers[SourceLocal] == nil {
			return "", fmt.Errorf("%w: local files are disabled", ErrSourceUnavailable)
		}
		return SourceLocal, nil
	case strings.HasSuffix(parsedURL.Hostname(), storage.BlobHostSuffix) && r.fetchers[SourceAzure] != nil:
		return SourceAzure, nil
	default:
		return SourceHTTP, nil
	}
}

// FetchImage validates, routes and fetches the referenced image
func (r *RoutingImageRepository) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	source, err := r.SourceOf(imageURL)
	if err != nil {
		return nil, err
	}

	img, err := r.fetchers[source].FetchImage(ctx, imageURL)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrImageNotFound, err)
		}
		return nil, fmt.Errorf("%s source: %w", source, err)
	}
	return img, nil
}
