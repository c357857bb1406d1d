package entity

import (
	"fmt"
	"sort"
)

// Language is a configured language partition.
// Entries, search indices and feed sources are all scoped by Code.
type Language struct {
	Code     string
	Name     string
	Analyzer string // Elasticsearch language analyzer, e.g. "russian"
	FeedURL  string // empty when the language has no import source
}

// Languages is the fixed set of configured partitions keyed by code.
type Languages map[string]Language

// Lookup returns the language for code or ErrUnknownLanguage.
func (l Languages) Lookup(code string) (Language, error) {
	lang, ok := l[code]
	if !ok || code == "" {
		return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	return lang, nil
}

// Codes returns the configured language codes in sorted order.
func (l Languages) Codes() []string {
	codes := make([]string, 0, len(l))
	for code := range l {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IndexName returns the language-scoped search index name "<collection>_<code>".
func IndexName(collection, code string) string {
	return collection + "_" + code
}
