package entry

import (
	"net/http"

	"newsdesk/internal/handler/http/respond"
)

type GetHandler struct{ Svc Reader }

// ServeHTTP returns one entry.
// @Summary      Get an entry
// @Tags         entries
// @Produce      json
// @Param        lang path string true "Language code"
// @Param        id   path string true "Entry id"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Unknown language"
// @Failure      404 {string} string "Entry not found"
// @Router       /entries/{lang}/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e, err := h.Svc.Get(r.Context(), r.PathValue("lang"), r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(e))
}
