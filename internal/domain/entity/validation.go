package entity

import (
	"fmt"
	"net/url"
	"regexp"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

var languageCodePattern = regexp.MustCompile(`^[a-z]{2,3}$`)

// ValidateFeedURL validates the format of a configured feed source URL.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a host.
// Feed URLs come from operator configuration, so no DNS resolution is performed here.
func ValidateFeedURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "feed_url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "feed_url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "feed_url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "feed_url", Message: "URL must have a valid host"}
	}

	return nil
}

// ValidateLanguageCode checks that code looks like an ISO 639 code ("ru", "ro").
func ValidateLanguageCode(code string) error {
	if !languageCodePattern.MatchString(code) {
		return &ValidationError{Field: "language", Message: "must be a 2-3 letter lowercase code"}
	}
	return nil
}
