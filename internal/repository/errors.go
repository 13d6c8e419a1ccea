package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image reference
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrImageNotFound indicates the image was not found at its source
	ErrImageNotFound = errors.New("image not found")

	// ErrSourceUnavailable indicates no fetcher is configured for the reference
	ErrSourceUnavailable = errors.New("image source unavailable")
)
