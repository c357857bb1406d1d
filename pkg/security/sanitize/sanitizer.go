// Package sanitize cleans untrusted article markup against a tag and
// attribute whitelist. It never fails: malformed input degrades to text.
package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer is safe for concurrent use once built.
type Sanitizer struct {
	policy Policy
	strict *bluemonday.Policy
}

// New builds a Sanitizer for policy. A nil policy means DefaultPolicy.
func New(policy Policy) *Sanitizer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	policy = policy.Clone()

	bm := bluemonday.NewPolicy()
	bm.AllowURLSchemes("http", "https")
	bm.AllowRelativeURLs(true)
	bm.RequireParseableURLs(true)

	tags := policy.Tags()
	bm.AllowElements(tags...)
	// img and iframe would otherwise vanish once a bad src is dropped
	bm.AllowNoAttrs().OnElements(tags...)
	for _, tag := range tags {
		for attr := range policy[tag] {
			bm.AllowAttrs(attr).OnElements(tag)
		}
	}

	return &Sanitizer{policy: policy, strict: bm}
}

// Policy returns a copy of the whitelist in use.
func (s *Sanitizer) Policy() Policy {
	return s.policy.Clone()
}

// Sanitize returns raw with every tag, attribute and attribute value outside
// the whitelist removed. Text content of unwrapped tags is kept; script and
// style content is dropped.
func (s *Sanitizer) Sanitize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	clean := s.strict.Sanitize(raw)
	if !s.hasDomainRules() || !strings.Contains(clean, "<") {
		return clean
	}
	return s.restrictDomains(clean)
}

func (s *Sanitizer) hasDomainRules() bool {
	for _, attrs := range s.policy {
		for _, domains := range attrs {
			if len(domains) > 0 {
				return true
			}
		}
	}
	return false
}

// restrictDomains drops attribute values pointing outside their domain list.
// The element itself stays.
func (s *Sanitizer) restrictDomains(clean string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + clean + "</body>"))
	if err != nil {
		return clean
	}
	body := doc.Find("body")

	changed := false
	for tag, attrs := range s.policy {
		for attr, domains := range attrs {
			if len(domains) == 0 {
				continue
			}
			body.Find(tag).Each(func(_ int, sel *goquery.Selection) {
				value, ok := sel.Attr(attr)
				if !ok || AllowedURL(value, domains) {
					return
				}
				sel.RemoveAttr(attr)
				changed = true
			})
		}
	}
	if !changed {
		return clean
	}

	out, err := body.Html()
	if err != nil {
		return clean
	}
	return out
}

// FirstImageSource returns the src of the first img element in sanitized
// markup, or "" when there is none.
func FirstImageSource(clean string) string {
	if !strings.Contains(clean, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
