package entry

import (
	"context"
	"net/http"

	"newsdesk/internal/common/pagination"
	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
	entryUC "newsdesk/internal/usecase/entry"
	"newsdesk/internal/usecase/feed"
	"newsdesk/internal/usecase/ingest"
)

// Submitter ingests manual submissions. *ingest.Service satisfies it.
type Submitter interface {
	Submit(ctx context.Context, in ingest.SubmitInput) (*ingest.Result, error)
}

// Importer imports one language feed. *feed.Service satisfies it.
type Importer interface {
	ImportLanguage(ctx context.Context, code string) (*feed.Report, error)
}

// Searcher runs full-text queries. *search.Service satisfies it.
type Searcher interface {
	Search(ctx context.Context, lang, query string) ([]entity.Entry, error)
}

// Reader reads stored entries. *entry.Service satisfies it.
type Reader interface {
	List(ctx context.Context, lang string, page pagination.Page) (*entryUC.PaginatedResult, error)
	Get(ctx context.Context, lang, id string) (*entity.Entry, error)
}

// Deps are the collaborators of the entry routes.
type Deps struct {
	Submitter Submitter
	Importer  Importer
	Searcher  Searcher
	Reader    Reader
	Assets    repository.AssetStore
	Pager     pagination.Pager
	// MaxUploadBytes caps a submission's multipart body.
	MaxUploadBytes int64
}

// Register mounts the entry routes on mux. Write routes are wrapped with
// write, which may be nil.
func Register(mux *http.ServeMux, d Deps, write func(http.Handler) http.Handler) {
	if write == nil {
		write = func(h http.Handler) http.Handler { return h }
	}

	mux.Handle("GET /entries", ListHandler{Svc: d.Reader, Pager: d.Pager})
	mux.Handle("GET /entries/{lang}/{id}", GetHandler{Svc: d.Reader})
	mux.Handle("GET /search", SearchHandler{Svc: d.Searcher})
	mux.Handle("GET /images/{name}", ImageHandler{Assets: d.Assets})

	mux.Handle("POST /entries", write(CreateHandler{Svc: d.Submitter, MaxUploadBytes: d.MaxUploadBytes}))
	mux.Handle("POST /imports/{lang}", write(ImportHandler{Svc: d.Importer}))
}
