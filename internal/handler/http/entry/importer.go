package entry

import (
	"net/http"

	"newsdesk/internal/handler/http/respond"
)

type ImportHandler struct{ Svc Importer }

// ServeHTTP imports the feed of one language and reports the outcome.
// Item failures are part of the report; only a feed that cannot be
// fetched fails the request.
// @Summary      Import a language feed
// @Tags         imports
// @Produce      json
// @Param        lang path string true "Language code"
// @Success      200 {object} ImportDTO
// @Failure      400 {string} string "Unknown language"
// @Failure      502 {string} string "Feed unavailable"
// @Router       /imports/{lang} [post]
func (h ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report, err := h.Svc.ImportLanguage(r.Context(), r.PathValue("lang"))
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toImportDTO(report))
}
