// Package fixtures provides reusable test data generators and in-memory
// collaborators shared by the newsdesk test suites. It eliminates duplicated
// fakes across packages and keeps test content consistent.
package fixtures

import (
	"strings"
	"unicode/utf8"
)

// ArticleOptions configures the generated article content.
type ArticleOptions struct {
	// Length is the approximate character count (target length, ±10% variance allowed)
	Length int

	// Language selects the sentence pool: "ru" or "ro". Anything else is "ru".
	Language string

	// HTML wraps every sentence in a <p> element.
	HTML bool
}

var sentencePools = map[string][]string{
	"ru": {
		"Городской совет утвердил бюджет на следующий год после долгих обсуждений.",
		"Синоптики обещают тёплую погоду и небольшие осадки в выходные дни.",
		"На центральной площади открылась выставка молодых художников.",
		"Министерство образования объявило о новых правилах приёма в вузы.",
		"Футбольный клуб одержал уверенную победу в домашнем матче.",
		"Цены на продукты в столичных магазинах остались стабильными.",
		"Водители жалуются на пробки в районе нового моста.",
		"Учёные представили результаты исследования качества воды в реке.",
		"В парке высадили более двухсот молодых деревьев.",
		"Национальный театр готовит премьеру к началу сезона.",
	},
	"ro": {
		"Consiliul municipal a aprobat bugetul pentru anul viitor după discuții lungi.",
		"Meteorologii anunță vreme caldă și precipitații slabe la sfârșit de săptămână.",
		"În piața centrală s-a deschis o expoziție a tinerilor artiști.",
		"Ministerul Educației a anunțat noi reguli de admitere în universități.",
		"Echipa de fotbal a obținut o victorie clară pe teren propriu.",
		"Prețurile la alimente în magazinele din capitală au rămas stabile.",
		"Șoferii se plâng de ambuteiajele din zona noului pod.",
		"Cercetătorii au prezentat rezultatele unui studiu privind calitatea apei.",
		"În parc au fost plantați peste două sute de copaci tineri.",
		"Teatrul Național pregătește o premieră pentru începutul stagiunii.",
	},
}

// GenerateArticle generates coherent news text based on the provided options.
// Length is counted in runes of the text without markup.
//
// Example:
//
//	article := GenerateArticle(ArticleOptions{
//	    Length:   2000,
//	    Language: "ro",
//	})
func GenerateArticle(opts ArticleOptions) string {
	pool, ok := sentencePools[opts.Language]
	if !ok {
		pool = sentencePools["ru"]
	}

	var builder strings.Builder
	currentLength := 0
	for i := 0; ; i++ {
		sentence := pool[i%len(pool)]

		// Calculate the length if we add this sentence
		sentenceLength := utf8.RuneCountInString(sentence)
		if currentLength > 0 && !opts.HTML {
			sentenceLength++ // Account for space
		}
		potentialLength := currentLength + sentenceLength

		// Past 90% of the target, stop rather than overshoot 110%
		if currentLength >= int(float64(opts.Length)*0.9) &&
			potentialLength > int(float64(opts.Length)*1.1) {
			break
		}

		switch {
		case opts.HTML:
			builder.WriteString("<p>" + sentence + "</p>")
		case currentLength > 0:
			builder.WriteString(" " + sentence)
		default:
			builder.WriteString(sentence)
		}
		currentLength = potentialLength

		if currentLength >= opts.Length {
			break
		}
	}

	return builder.String()
}

// GenerateShortArticle generates a short Russian article (~200 characters),
// below the default enrichment threshold.
func GenerateShortArticle() string {
	return GenerateArticle(ArticleOptions{Length: 200, Language: "ru"})
}

// GenerateLongArticle generates a long Russian article (~3000 characters) as
// HTML paragraphs, the shape readability extracts from a full page.
func GenerateLongArticle() string {
	return GenerateArticle(ArticleOptions{Length: 3000, Language: "ru", HTML: true})
}

// ArticlePage wraps body in a complete HTML page with navigation chrome.
func ArticlePage(title, body string) string {
	return `<!DOCTYPE html><html><head><meta charset="utf-8"><title>` + title + `</title></head><body>` +
		`<nav><a href="/">Главная</a> <a href="/news">Новости</a></nav>` +
		`<article><h1>` + title + `</h1>` + body + `</article>` +
		`<footer>© newsdesk</footer></body></html>`
}
