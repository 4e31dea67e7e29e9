package validator

import (
	"net/url"
	"strings"
)

// ValidateURL checks that urlStr is a non-empty, absolute http(s) URL with a host
// The string is checked as given; callers store exactly what they validated
func ValidateURL(urlStr string) error {
	if strings.TrimSpace(urlStr) == "" {
		return ErrEmptyURL
	}

	// Surrounding whitespace would be stored as part of the URL but dropped
	// from the Location header, giving two ids for one redirect target
	if strings.TrimSpace(urlStr) != urlStr {
		return ErrInvalidURL
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return ErrInvalidURL
	}

	// Check scheme (url.Parse lowercases it)
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return ErrInvalidScheme
	}

	// Check host
	if parsedURL.Host == "" {
		return ErrInvalidHost
	}

	return nil
}
