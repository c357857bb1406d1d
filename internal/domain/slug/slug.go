// Package slug derives the canonical URL-safe identifier of an entry from its title.
//
// The derivation is a pure function: lowercase, transliterate Cyrillic and
// Romanian letters through a fixed table, fold any remaining diacritics to
// their base letter, delete markup-hostile punctuation, join whitespace runs
// with "_" and percent-encode whatever is left outside [0-9a-z_-].
// Two titles that differ only in case or diacritics yield the same slug.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"newsdesk/internal/domain/entity"
)

// Separator joins the words of a slug.
const Separator = "_"

// ErrEmptySlug is returned when every character of a title is stripped.
var ErrEmptySlug = &entity.ValidationError{Field: "title", Message: "produces an empty slug"}

// transliteration maps lowercase letters to their canonical ASCII spelling.
// Hard and soft signs become the separator.
var transliteration = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "j", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "z", 'ч': "c", 'ш': "s", 'щ': "s", 'ъ': Separator,
	'ы': "y", 'ь': Separator, 'э': "e", 'ю': "u", 'я': "a",

	// Romanian, in both comma-below and legacy cedilla forms
	'ă': "a", 'â': "a", 'î': "i", 'ș': "s", 'ş': "s", 'ț': "t", 'ţ': "t",
}

// stripped lists characters deleted outright.
const stripped = `<>/\!?%:»«—.,"'…`

// Make returns the slug for title, or ErrEmptySlug when nothing survives.
func Make(title string) (string, error) {
	lowered := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if strings.ContainsRune(stripped, r) {
			continue
		}
		if repl, ok := transliteration[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}

	words := strings.Fields(foldDiacritics(b.String()))
	slug := encode(strings.Join(words, Separator))
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

// ForLanguage returns the slug of title within a language partition.
// The table covers every configured language, so the output does not
// depend on lang; uniqueness is still scoped per language by the store.
func ForLanguage(lang, title string) (string, error) {
	return Make(title)
}

// foldDiacritics strips combining marks left after canonical decomposition,
// so "é" becomes "e". Transformers are stateful, so one chain per call.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// encode percent-encodes every byte outside [0-9a-z_-] using lowercase hex,
// so the result always matches ^[0-9a-z_%-]*$. Spaces never become "+".
func encode(s string) string {
	const hex = "0123456789abcdef"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '-'
}
