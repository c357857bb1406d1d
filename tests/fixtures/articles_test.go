package fixtures_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"newsdesk/tests/fixtures"
)

func TestGenerateArticle_Length(t *testing.T) {
	tests := []struct {
		name   string
		opts   fixtures.ArticleOptions
		target int
	}{
		{"short russian", fixtures.ArticleOptions{Length: 500, Language: "ru"}, 500},
		{"medium romanian", fixtures.ArticleOptions{Length: 2000, Language: "ro"}, 2000},
		{"long russian", fixtures.ArticleOptions{Length: 10000, Language: "ru"}, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article := fixtures.GenerateArticle(tt.opts)

			length := utf8.RuneCountInString(article)
			expectedMin := int(float64(tt.target) * 0.9)
			expectedMax := int(float64(tt.target) * 1.1)
			if length < expectedMin || length > expectedMax {
				t.Errorf("Expected length between %d and %d, got %d", expectedMin, expectedMax, length)
			}
		})
	}
}

func TestGenerateArticle_Language(t *testing.T) {
	ro := fixtures.GenerateArticle(fixtures.ArticleOptions{Length: 300, Language: "ro"})
	if !strings.Contains(ro, "Consiliul") {
		t.Errorf("Romanian article should use the Romanian pool, got %q", ro)
	}

	fallback := fixtures.GenerateArticle(fixtures.ArticleOptions{Length: 300, Language: "xx"})
	if !strings.Contains(fallback, "Городской") {
		t.Errorf("Unknown language should fall back to Russian, got %q", fallback)
	}
}

func TestGenerateLongArticle_IsHTML(t *testing.T) {
	article := fixtures.GenerateLongArticle()

	if !strings.HasPrefix(article, "<p>") || !strings.HasSuffix(article, "</p>") {
		t.Errorf("Long article should be paragraph markup")
	}
	if strings.Count(article, "<p>") < 10 {
		t.Errorf("Long article should have many paragraphs, got %d", strings.Count(article, "<p>"))
	}
}

func TestGenerateShortArticle(t *testing.T) {
	article := fixtures.GenerateShortArticle()
	if article == "" {
		t.Fatal("Generated article is empty")
	}
	if strings.Contains(article, "<p>") {
		t.Error("Short article should be plain text")
	}
}

func TestArticlePage(t *testing.T) {
	page := fixtures.ArticlePage("Заголовок", "<p>текст</p>")
	for _, want := range []string{"<title>Заголовок</title>", "<article>", "<p>текст</p>", "<nav>"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}
