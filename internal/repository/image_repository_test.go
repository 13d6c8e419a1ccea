package repository

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	apperrors "go-eye-sharpness/internal/errors"
	"go-eye-sharpness/internal/storage"
	"go-eye-sharpness/pkg/validation"
)

type fakeFetcher struct {
	calls []string
	err   error
}

func (f *fakeFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	f.calls = append(f.calls, imageURL)
	if f.err != nil {
		return nil, f.err
	}
	return image.NewGray(image.Rect(0, 0, 4, 4)), nil
}

func TestNewRoutingImageRepository_RequiresHTTP(t *testing.T) {
	_, err := NewRoutingImageRepository(nil, map[Source]storage.ImageFetcher{})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestRoutingImageRepository_SourceOf(t *testing.T) {
	full, err := NewRoutingImageRepository(nil, map[Source]storage.ImageFetcher{
		SourceHTTP:  &fakeFetcher{},
		SourceAzure: &fakeFetcher{},
		SourceLocal: &fakeFetcher{},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	httpOnly, err := NewRoutingImageRepository(nil, map[Source]storage.ImageFetcher{SourceHTTP: &fakeFetcher{}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		repo    *RoutingImageRepository
		url     string
		want    Source
		wantErr error
	}{
		{"plain https", full, "https://example.com/a.jpg", SourceHTTP, nil},
		{"blob endpoint", full, "https://acct.blob.core.windows.net/faces/a.jpg", SourceAzure, nil},
		{"file", full, "file:///faces/a.jpg", SourceLocal, nil},
		{"blob without azure falls back to http", httpOnly, "https://acct.blob.core.windows.net/faces/a.jpg", SourceHTTP, nil},
		{"file without local", httpOnly, "file:///faces/a.jpg", "", ErrSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.repo.SourceOf(tt.url)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRoutingImageRepository_FetchImage(t *testing.T) {
	httpFetcher, azureFetcher := &fakeFetcher{}, &fakeFetcher{}
	repo, err := NewRoutingImageRepository(nil, map[Source]storage.ImageFetcher{
		SourceHTTP:  httpFetcher,
		SourceAzure: azureFetcher,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx := context.Background()
	if _, err := repo.FetchImage(ctx, "https://example.com/a.jpg"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := repo.FetchImage(ctx, "https://acct.blob.core.windows.net/faces/a.jpg"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(httpFetcher.calls) != 1 || len(azureFetcher.calls) != 1 {
		t.Errorf("Expected one call per fetcher, got http=%v azure=%v", httpFetcher.calls, azureFetcher.calls)
	}
}

func TestRoutingImageRepository_FetchImage_Invalid(t *testing.T) {
	fetcher := &fakeFetcher{}
	repo, err := NewRoutingImageRepository(nil, map[Source]storage.ImageFetcher{SourceHTTP: fetcher})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// file:// is rejected by the validator when no local fetcher is configured
	for _, ref := range []string{"", "ftp://example.com/a.jpg", "file:///a.jpg"} {
		_, err := repo.FetchImage(context.Background(), ref)
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			t.Errorf("%q: expected validation error, got %v", ref, err)
		}
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("Expected no fetches, got %v", fetcher.calls)
	}
}

func TestRoutingImageRepository_FetchImage_NotFound(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("failed to fetch image: %w", &storage.StatusError{StatusCode: 404})}
	repo, err := NewRoutingImageRepository(validation.NewURLValidator(), map[Source]storage.ImageFetcher{SourceHTTP: fetcher})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = repo.FetchImage(context.Background(), "https://example.com/missing.jpg")
	if !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Expected ErrImageNotFound, got %v", err)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected the storage cause to be preserved, got %v", err)
	}
}
