package sanitize

import (
	"net/url"
	"sort"
	"strings"
)

// Policy is the whitelist of markup a body may keep: tag name to attribute
// name to the domains its value may point at. An attribute with an empty
// domain list is allowed with any value that survives the URL checks.
type Policy map[string]map[string][]string

// DefaultPolicy returns the whitelist used when no allowed_tags are configured.
func DefaultPolicy() Policy {
	return Policy{
		"p":      {},
		"b":      {},
		"i":      {},
		"strong": {},
		"em":     {},
		"img":    {"src": {"point.md"}},
		"iframe": {"src": {"youtube.com", "play.md", "vimeo.com"}},
	}
}

// Tags returns the allowed tag names in sorted order.
func (p Policy) Tags() []string {
	tags := make([]string, 0, len(p))
	for tag := range p {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Clone returns a deep copy so callers can extend a shared policy.
func (p Policy) Clone() Policy {
	out := make(Policy, len(p))
	for tag, attrs := range p {
		copied := make(map[string][]string, len(attrs))
		for attr, domains := range attrs {
			copied[attr] = append([]string(nil), domains...)
		}
		out[tag] = copied
	}
	return out
}

// AllowedURL reports whether value is a relative URL or an absolute URL whose
// host is one of domains, its "www." form, or a subdomain of it.
func AllowedURL(value string, domains []string) bool {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return true
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(d, "www."))
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
