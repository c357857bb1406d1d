package entry

import (
	"errors"
	"net/http"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/assets"
	entryUC "newsdesk/internal/usecase/entry"
	"newsdesk/internal/usecase/feed"
	"newsdesk/internal/usecase/ingest"
	"newsdesk/internal/usecase/search"
)

// Returned to clients in place of the underlying size errors.
var (
	errImageTooLarge  = errors.New("image too large")
	errUploadTooLarge = errors.New("upload too large")
)

// statusFor maps use case errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, entity.ErrUnknownLanguage),
		errors.Is(err, entity.ErrValidationFailed),
		errors.Is(err, entryUC.ErrInvalidEntryID):
		return http.StatusBadRequest
	case errors.Is(err, entryUC.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrSlugConflict):
		return http.StatusConflict
	case errors.As(err, &maxErr), errors.Is(err, assets.ErrAssetTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, feed.ErrFeedFetch), errors.Is(err, search.ErrSearch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
