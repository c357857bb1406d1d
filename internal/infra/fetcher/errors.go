package fetcher

import "errors"

// Sentinel errors for outbound HTTP fetches.
var (
	// ErrInvalidURL indicates a malformed URL or a scheme other than http/https.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the host resolves to a loopback, private or
	// link-local address.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	ErrTooManyRedirects = errors.New("too many redirects")

	ErrBodyTooLarge = errors.New("response body too large")

	ErrTimeout = errors.New("request timeout")

	// ErrReadabilityFailed indicates no article content could be extracted.
	ErrReadabilityFailed = errors.New("content extraction failed")
)
