package entry

import (
	"net/http"

	"newsdesk/internal/handler/http/respond"
)

type SearchHandler struct{ Svc Searcher }

// ServeHTTP runs a full-text search in one language.
// @Summary      Search entries
// @Tags         entries
// @Produce      json
// @Param        language query string true "Language code"
// @Param        q        query string true "Search text"
// @Success      200 {array} DTO
// @Failure      400 {string} string "Missing query or unknown language"
// @Router       /search [get]
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := h.Svc.Search(r.Context(), q.Get("language"), q.Get("q"))
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	out := make([]DTO, 0, len(results))
	for i := range results {
		out = append(out, toDTO(&results[i]))
	}
	respond.JSON(w, http.StatusOK, out)
}
