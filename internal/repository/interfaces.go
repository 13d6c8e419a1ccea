package repository

import (
	"context"
	"image"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves and decodes the referenced image
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)

	// ValidateImageURL validates if the provided reference is acceptable
	ValidateImageURL(imageURL string) error

	// SourceOf reports which source would serve the reference
	SourceOf(imageURL string) (Source, error)
}

// Source names an image backend
type Source string

const (
	SourceHTTP  Source = "http"
	SourceAzure Source = "azure"
	SourceLocal Source = "local"
)
