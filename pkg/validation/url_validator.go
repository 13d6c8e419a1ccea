package validation

import (
	"net/url"
	"slices"
	"strings"

	apperrors "go-eye-sharpness/internal/errors"
)

// URLValidator handles image reference validation
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator creates a new URL validator accepting http and https from any host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options.
// A host entry starting with "." matches any subdomain, e.g. ".blob.core.windows.net".
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// WithLocalFiles returns a copy that also accepts file:// references
func (v *URLValidator) WithLocalFiles() *URLValidator {
	if v.isSchemeAllowed("file") {
		return v
	}
	schemes := append(slices.Clone(v.allowedSchemes), "file")
	return &URLValidator{allowedSchemes: schemes, allowedHosts: v.allowedHosts}
}

// ValidateImageURL validates if the provided reference is acceptable for image processing
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	// file URLs carry a path, not a host
	if parsedURL.Scheme == "file" {
		if parsedURL.Path == "" {
			return apperrors.NewValidationError("file URL must have a path", nil)
		}
		return nil
	}

	if parsedURL.Hostname() == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	return slices.Contains(v.allowedSchemes, scheme)
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if strings.HasPrefix(allowed, ".") && strings.HasSuffix(host, allowed) {
			return true
		}
		if host == allowed {
			return true
		}
	}
	return false
}
