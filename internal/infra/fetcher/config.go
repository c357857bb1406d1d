package fetcher

import (
	"fmt"
	"time"
)

// ContentFetchConfig controls article enrichment for feed entries whose
// summary is too short to stand on its own.
type ContentFetchConfig struct {
	// Enabled turns enrichment on. Off by default: feeds usually carry the
	// full article.
	Enabled bool

	// Threshold is the summary length in characters below which the linked
	// article is fetched.
	Threshold int

	// Timeout bounds a single request.
	Timeout time.Duration

	// MaxBodySize is enforced while reading, not from Content-Length.
	MaxBodySize int64

	MaxRedirects int

	// DenyPrivateIPs rejects hosts resolving to private addresses.
	DenyPrivateIPs bool
}

// DefaultConfig returns the enrichment defaults.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Enabled:        false,
		Threshold:      500,
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks if the configuration values are valid and safe.
//
// Validation rules:
//   - Threshold: >= 0 (can be 0 to always fetch)
//   - Timeout: > 0 (must have timeout)
//   - MaxBodySize: 1KB-100MB (prevent memory issues)
//   - MaxRedirects: 0-10 (reasonable redirect limit)
func (c *ContentFetchConfig) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return nil
}

// ShouldFetch reports whether a summary of the given length needs enrichment.
func (c *ContentFetchConfig) ShouldFetch(summaryLen int) bool {
	return c.Enabled && summaryLen < c.Threshold
}
