package entry

import (
	"log/slog"
	"net/http"
	"time"

	"newsdesk/internal/common/pagination"
	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/observability/logging"
)

// ListHandler pages through a language's entries. The page size is fixed by
// Pager; only the page number comes from the client.
type ListHandler struct {
	Svc   Reader
	Pager pagination.Pager
}

// ListResponse is one page of entries.
type ListResponse struct {
	Entries    []DTO               `json:"entries"`
	Pagination pagination.Metadata `json:"pagination"`
}

// ServeHTTP lists the entries of a language, newest first.
// @Summary      List entries
// @Tags         entries
// @Produce      json
// @Param        language query string true  "Language code"
// @Param        page     query int    false "Page number, values below 1 read page 1" default(1)
// @Success      200 {object} ListResponse
// @Failure      400 {string} string "Unknown language"
// @Router       /entries [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	lang := r.URL.Query().Get("language")
	page := h.Pager.FromRequest(r)
	logger := logging.FromContext(ctx).With(
		slog.String("language", lang),
		slog.Int("page", page.Number))

	result, err := h.Svc.List(ctx, lang, page)
	if err != nil {
		code := statusFor(err)
		errType := "database"
		if code < http.StatusInternalServerError {
			errType = "validation"
		}
		pagination.RecordError(errType)
		logger.Warn("entry listing failed",
			slog.String("error_type", errType),
			slog.Any("error", err))
		respond.SafeError(w, code, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Data))
	for _, e := range result.Data {
		dtos = append(dtos, toDTO(e))
	}

	duration := time.Since(start)
	pagination.RecordPage(lang, page, duration)
	logger.Debug("entry page served",
		slog.Int("returned", len(dtos)),
		slog.Int64("total", result.Pagination.Total),
		slog.Duration("duration", duration))

	respond.JSON(w, http.StatusOK, ListResponse{Entries: dtos, Pagination: result.Pagination})
}
