package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"
)

const fetchAttempts = 3

// HTTPImageFetcher downloads images over HTTP(S) with retries on transient failures
type HTTPImageFetcher struct {
	client  *http.Client
	backoff time.Duration
}

// HTTPOption configures an HTTPImageFetcher
type HTTPOption func(*HTTPImageFetcher)

// WithTimeout bounds each attempt, including reading the body
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) {
		h.client.Timeout = timeout
	}
}

// WithBackoff sets the base delay between attempts; attempt n waits n*backoff
func WithBackoff(backoff time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) {
		h.backoff = backoff
	}
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(opts ...HTTPOption) *HTTPImageFetcher {
	transport := &http.Transport{
		// Connection pooling sized for single image downloads
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	h := &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FetchImage downloads and decodes imageURL. 4xx responses fail immediately;
// network errors and 5xx responses are retried.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, image/bmp, image/tiff, */*")
	req.Header.Set("User-Agent", "Go-Eye-Sharpness/1.0")

	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		resp, err := h.client.Do(req)
		if err != nil {
			// Cancellation is not transient
			if ctx.Err() != nil {
				return nil, fmt.Errorf("fetch cancelled: %w", ctx.Err())
			}
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			img, err := decode(resp.Body)
			resp.Body.Close()
			return img, err
		}
		resp.Body.Close()

		lastErr = &StatusError{StatusCode: resp.StatusCode}
		if resp.StatusCode < 500 {
			break
		}
	}

	var statusErr *StatusError
	if errors.As(lastErr, &statusErr) && statusErr.StatusCode < 500 {
		return nil, fmt.Errorf("failed to fetch image: %w", lastErr)
	}
	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", fetchAttempts, lastErr)
}
