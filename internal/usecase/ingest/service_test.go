package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/resilience/retry"
	"newsdesk/pkg/security/sanitize"
	"newsdesk/tests/fixtures"
)

type memAssets struct {
	uploads []string
	fetched []string
	fail    error
}

func (a *memAssets) StoreUpload(_ context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	a.uploads = append(a.uploads, filename)
	return "upload" + strings.ToLower(filename[strings.LastIndex(filename, "."):]), nil
}

func (a *memAssets) Path(name string) (string, error) { return "/assets/" + name, nil }

func (a *memAssets) FetchRemote(_ context.Context, rawURL string) (string, error) {
	if a.fail != nil {
		return "", a.fail
	}
	a.fetched = append(a.fetched, rawURL)
	return "remote.jpg", nil
}

var testLanguages = entity.Languages{
	"ru": {Code: "ru", Name: "russian", Analyzer: "russian"},
	"ro": {Code: "ro", Name: "romanian", Analyzer: "romanian"},
}

type fixture struct {
	svc     *Service
	entries *fixtures.EntryStore
	index   *fixtures.SearchIndex
	assets  *memAssets
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{entries: fixtures.NewEntryStore(), index: fixtures.NewSearchIndex(), assets: &memAssets{}}
	f.svc = NewService(f.entries, f.index, sanitize.New(nil), f.assets, f.assets, Config{
		Languages: testLanguages,
		IndexRetry: retry.Policy{
			Name:     "index-test",
			Attempts: 2,
			Base:     time.Millisecond,
			Cap:      time.Millisecond,
			Factor:   1,
		},
	})
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}


func TestSubmit_CreatesSanitizedEntry(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Language: "ru",
		Title:    "Привет, мир!",
		Body:     `<p onclick="x()">hi<script>bad()</script></p>`,
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.True(t, res.Indexed)

	indexedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := &entity.Entry{
		ID:          "privet_mir",
		Language:    "ru",
		Title:       "Привет, мир!",
		Body:        "<p>hi</p>",
		Image:       entity.NoImage,
		PublishedAt: indexedAt,
		IndexedAt:   &indexedAt,
	}
	if diff := cmp.Diff(want, res.Entry); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	stored, err := f.entries.Get(context.Background(), "ru", "privet_mir")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "<p>hi</p>", stored.Body)
	assert.NotNil(t, stored.IndexedAt)

	doc, ok := f.index.Doc("news_ru", "privet_mir")
	require.True(t, ok, "document must be written to news_ru")
	assert.Equal(t, "Привет, мир!", doc.Title)
}

func TestSubmit_StoresUpload(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Language:      "ro",
		Title:         "Știri locale",
		Body:          "<p>text</p>",
		ImageFilename: "photo.JPG",
		Image:         strings.NewReader("jpeg bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "stiri_locale", res.Entry.ID)
	assert.Equal(t, "upload.jpg", res.Entry.Image)
	assert.Equal(t, []string{"photo.JPG"}, f.assets.uploads)
	assert.Empty(t, f.assets.fetched)
}

func TestSubmit_DoesNotFetchBodyImages(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Language: "ru",
		Title:    "Фото",
		Body:     `<p>x</p><img src="http://point.md/a.jpg">`,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.NoImage, res.Entry.Image)
	assert.Empty(t, f.assets.fetched)
}

func TestSubmit_SlugConflict(t *testing.T) {
	f := newFixture(t)
	in := SubmitInput{Language: "ru", Title: "Привет, мир!", Body: "<p>one</p>"}

	_, err := f.svc.Submit(context.Background(), in)
	require.NoError(t, err)

	in.Title = "привет мир"
	in.Body = "<p>two</p>"
	_, err = f.svc.Submit(context.Background(), in)
	require.ErrorIs(t, err, ErrSlugConflict)

	stored, _ := f.entries.Get(context.Background(), "ru", "privet_mir")
	assert.Equal(t, "<p>one</p>", stored.Body, "first write must survive")
}

func TestSubmit_SameTitleInOtherLanguage(t *testing.T) {
	f := newFixture(t)

	for _, lang := range []string{"ru", "ro"} {
		_, err := f.svc.Submit(context.Background(), SubmitInput{Language: lang, Title: "Breaking", Body: "<p>x</p>"})
		require.NoError(t, err, lang)
	}
	assert.Equal(t, 2, f.entries.Inserts())
	assert.Equal(t, 1, len(f.index.IDs("news_ru")))
	assert.Equal(t, 1, len(f.index.IDs("news_ro")))
}

func TestSubmit_ConcurrentSameTitle(t *testing.T) {
	f := newFixture(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Submit(context.Background(), SubmitInput{
				Language: "ru", Title: "Гонка", Body: "<p>x</p>",
			})
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrSlugConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, f.entries.Inserts())
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      SubmitInput
		field   string
		wantErr error
	}{
		{
			name:    "unknown language",
			in:      SubmitInput{Language: "de", Title: "Hallo", Body: "<p>x</p>"},
			wantErr: entity.ErrUnknownLanguage,
		},
		{
			name:    "empty language",
			in:      SubmitInput{Title: "Hallo", Body: "<p>x</p>"},
			wantErr: entity.ErrUnknownLanguage,
		},
		{
			name:    "blank title",
			in:      SubmitInput{Language: "ru", Title: "  \t ", Body: "<p>x</p>"},
			field:   "title",
			wantErr: entity.ErrValidationFailed,
		},
		{
			name:    "title of stripped characters only",
			in:      SubmitInput{Language: "ru", Title: "?!…", Body: "<p>x</p>"},
			field:   "title",
			wantErr: entity.ErrValidationFailed,
		},
		{
			name:    "empty body",
			in:      SubmitInput{Language: "ru", Title: "Пусто", Body: ""},
			field:   "msg",
			wantErr: entity.ErrValidationFailed,
		},
		{
			name:    "body removed by sanitizer",
			in:      SubmitInput{Language: "ru", Title: "Пусто", Body: "<script>x()</script>"},
			field:   "msg",
			wantErr: entity.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.svc.Submit(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)

			if tt.field != "" {
				var vErr *entity.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.field, vErr.Field)
			}
			assert.Zero(t, f.entries.Inserts(), "no writes on validation failure")
			assert.Zero(t, f.index.Writes())
		})
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.entries.FailWith(errors.New("connection refused"))

	_, err := f.svc.Submit(context.Background(), SubmitInput{Language: "ru", Title: "Сбой", Body: "<p>x</p>"})
	require.ErrorIs(t, err, ErrStore)
	assert.Zero(t, f.index.Writes(), "index is written only after the store")
}


func importInput(title string) ImportInput {
	return ImportInput{
		Language:    "ru",
		Title:       title,
		Body:        "<p>summary</p>",
		BaseURL:     "https://point.md/ru/news/1",
		PublishedAt: time.Date(2026, 2, 28, 9, 30, 0, 0, time.FixedZone("MSK", 3*3600)),
	}
}

func TestImport_CreatesEntry(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Import(context.Background(), importInput("Новости дня"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, "novosti_dna", res.Entry.ID)
	assert.Equal(t, time.Date(2026, 2, 28, 6, 30, 0, 0, time.UTC), res.Entry.PublishedAt)
	assert.Equal(t, entity.NoImage, res.Entry.Image)
}

func TestImport_DuplicateSkip(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Import(context.Background(), importInput("Новости дня"))
	require.NoError(t, err)
	inserts, writes := f.entries.Inserts(), f.index.Writes()

	res, err := f.svc.Import(context.Background(), importInput("Новости дня"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeDuplicateSkip, res.Outcome)
	assert.False(t, res.Indexed)
	assert.Equal(t, "novosti_dna", res.Entry.ID)
	assert.Equal(t, inserts, f.entries.Inserts(), "no new store row")
	assert.Equal(t, writes, f.index.Writes(), "no new index document")
}

// racingEntries reports every id as absent so that the duplicate is only
// detected by the store's unique constraint.
type racingEntries struct{ *fixtures.EntryStore }

func (racingEntries) Exists(context.Context, string, string) (bool, error) { return false, nil }

func TestImport_StoreConflictIsDuplicateSkip(t *testing.T) {
	f := newFixture(t)
	racing := racingEntries{f.entries}
	f.svc.entries = racing

	_, err := f.svc.Import(context.Background(), importInput("Гонка"))
	require.NoError(t, err)

	res, err := f.svc.Import(context.Background(), importInput("Гонка"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicateSkip, res.Outcome)
	assert.Equal(t, 1, f.entries.Inserts())
}

func TestImport_ImageResolution(t *testing.T) {
	tests := []struct {
		name      string
		imageURL  string
		body      string
		baseURL   string
		wantFetch []string
		wantImage string
	}{
		{
			name:      "enclosure wins over body image",
			imageURL:  "https://cdn.point.md/enclosure.jpg",
			body:      `<p>x</p><img src="http://point.md/inline.jpg">`,
			baseURL:   "https://point.md/ru/news/1",
			wantFetch: []string{"https://cdn.point.md/enclosure.jpg"},
			wantImage: "remote.jpg",
		},
		{
			name:      "first body image",
			body:      `<p>x</p><img src="http://point.md/a.jpg"><img src="http://point.md/b.jpg">`,
			wantFetch: []string{"http://point.md/a.jpg"},
			wantImage: "remote.jpg",
		},
		{
			name:      "relative body image resolved against link",
			body:      `<img src="/img/c.png">`,
			baseURL:   "https://point.md/ru/news/1",
			wantFetch: []string{"https://point.md/img/c.png"},
			wantImage: "remote.jpg",
		},
		{
			name:      "relative image without base is skipped",
			body:      `<img src="c.png">`,
			wantImage: entity.NoImage,
		},
		{
			name:      "body image from foreign domain is stripped before lookup",
			body:      `<img src="http://evil.example/x.jpg">`,
			wantImage: entity.NoImage,
		},
		{
			name:      "no image",
			body:      `<p>text</p>`,
			wantImage: entity.NoImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := importInput("Картинка")
			in.ImageURL, in.Body, in.BaseURL = tt.imageURL, tt.body, tt.baseURL

			res, err := f.svc.Import(context.Background(), in)
			require.NoError(t, err)

			assert.Equal(t, tt.wantImage, res.Entry.Image)
			assert.Equal(t, tt.wantFetch, f.assets.fetched)
		})
	}
}

func TestImport_AssetFailureAbortsEntry(t *testing.T) {
	f := newFixture(t)
	f.assets.fail = errors.New("asset fetch failed: HTTP 404")
	in := importInput("Без картинки")
	in.ImageURL = "https://point.md/missing.jpg"

	res, err := f.svc.Import(context.Background(), in)
	require.ErrorIs(t, err, ErrAsset)
	assert.Nil(t, res)
	assert.Zero(t, f.entries.Inserts())
}

func TestImport_EnrichRunsOnlyForNewItems(t *testing.T) {
	f := newFixture(t)
	calls := 0
	in := importInput("Полный текст")
	in.Enrich = func(_ context.Context, body string) string {
		calls++
		return body + `<p>full <span>article</span></p>`
	}

	res, err := f.svc.Import(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "<p>summary</p><p>full article</p>", res.Entry.Body, "enriched body is sanitized")

	res, err = f.svc.Import(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicateSkip, res.Outcome)
	assert.Equal(t, 1, calls)
}

func TestImport_RequiresPublishTime(t *testing.T) {
	f := newFixture(t)
	in := importInput("Без даты")
	in.PublishedAt = time.Time{}

	_, err := f.svc.Import(context.Background(), in)
	var vErr *entity.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "published", vErr.Field)
}

func TestImport_EmptyBodyAllowed(t *testing.T) {
	f := newFixture(t)
	in := importInput("Только заголовок")
	in.Body = ""

	res, err := f.svc.Import(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "", res.Entry.Body)
}


func TestIndexFailure_LeavesEntryInOutbox(t *testing.T) {
	f := newFixture(t)
	f.index.FailWith(retry.Transient(errors.New("cluster unavailable")))

	res, err := f.svc.Submit(context.Background(), SubmitInput{Language: "ru", Title: "Очередь", Body: "<p>x</p>"})
	require.NoError(t, err, "index failures do not fail the ingestion")

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.False(t, res.Indexed)
	assert.Nil(t, res.Entry.IndexedAt)
	assert.Equal(t, 2, f.index.Writes(), "transient failures are retried")

	stored, _ := f.entries.Get(context.Background(), "ru", "ocered_")
	require.NotNil(t, stored, "entry stays visible in the store")

	backlog, _ := f.entries.CountUnindexed(context.Background())
	assert.EqualValues(t, 1, backlog)

	f.index.FailWith(nil)
	stats, err := f.svc.ReindexPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, &ReindexStats{Pending: 1, Indexed: 1}, stats)

	backlog, _ = f.entries.CountUnindexed(context.Background())
	assert.Zero(t, backlog)
	assert.Equal(t, 1, len(f.index.IDs("news_ru")))
}

func TestIndexFailure_PermanentErrorNotRetried(t *testing.T) {
	f := newFixture(t)
	f.index.FailWith(errors.New("mapper_parsing_exception"))

	res, err := f.svc.Submit(context.Background(), SubmitInput{Language: "ru", Title: "Ошибка", Body: "<p>x</p>"})
	require.NoError(t, err)
	assert.False(t, res.Indexed)
	assert.Equal(t, 1, f.index.Writes())
}

func TestReindexPending(t *testing.T) {
	f := newFixture(t)
	f.index.FailWith(errors.New("down"))
	titles := []string{"Первая", "Вторая", "Третья"}
	for _, title := range titles {
		_, err := f.svc.Submit(context.Background(), SubmitInput{Language: "ru", Title: title, Body: "<p>x</p>"})
		require.NoError(t, err)
	}

	t.Run("failures are counted", func(t *testing.T) {
		stats, err := f.svc.ReindexPending(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, &ReindexStats{Pending: 3, Failed: 3}, stats)
	})

	t.Run("limit bounds the batch", func(t *testing.T) {
		f.index.FailWith(nil)
		stats, err := f.svc.ReindexPending(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, &ReindexStats{Pending: 2, Indexed: 2}, stats)

		assert.Equal(t, []string{"pervaa", "vtoraa"}, f.index.IDs("news_ru"), "oldest entries first")
	})

	t.Run("drains the rest", func(t *testing.T) {
		stats, err := f.svc.ReindexPending(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, &ReindexStats{Pending: 1, Indexed: 1}, stats)
	})

	t.Run("empty outbox", func(t *testing.T) {
		stats, err := f.svc.ReindexPending(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, &ReindexStats{}, stats)
	})
}

func TestReindexPending_Canceled(t *testing.T) {
	f := newFixture(t)
	f.index.FailWith(errors.New("down"))
	_, err := f.svc.Submit(context.Background(), SubmitInput{Language: "ru", Title: "Отмена", Body: "<p>x</p>"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.svc.ReindexPending(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
}


func TestNormalizeTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Привет,   мир!  ", "Привет, мир!"},
		{"a\tb\nc", "a b c"},
		{"bad \xff byte", "bad \uFFFD byte"},
		{"", ""},
		{"already normalized", "already normalized"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTitle(tt.in), "input %q", tt.in)
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, ref string
		want      string
		ok        bool
	}{
		{"", "https://point.md/a.jpg", "https://point.md/a.jpg", true},
		{"https://point.md/ru/news/1", "/img/a.jpg", "https://point.md/img/a.jpg", true},
		{"https://point.md/ru/news/1", "a.jpg", "https://point.md/ru/news/a.jpg", true},
		{"https://point.md/ru/", "//cdn.point.md/a.jpg", "https://cdn.point.md/a.jpg", true},
		{"", "/img/a.jpg", "", false},
		{"not a url", "a.jpg", "", false},
		{"", "ftp://point.md/a.jpg", "", false},
		{"", "data:image/png;base64,AAAA", "", false},
	}
	for _, tt := range tests {
		got, ok := ResolveURL(tt.base, tt.ref)
		assert.Equal(t, tt.ok, ok, "%s + %s", tt.base, tt.ref)
		assert.Equal(t, tt.want, got, "%s + %s", tt.base, tt.ref)
	}
}
