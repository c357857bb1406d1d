package entry

import (
	"errors"
	"log/slog"
	"net/http"

	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/usecase/ingest"
)

// multipartMemory is how much of a form is buffered before spilling to
// temp files.
const multipartMemory = 8 << 20

// CreateHandler logs through the request-scoped logger installed by the
// Logging middleware.
type CreateHandler struct {
	Svc            Submitter
	MaxUploadBytes int64
}

// ServeHTTP accepts a manual submission.
// @Summary      Submit an entry
// @Tags         entries
// @Accept       multipart/form-data
// @Produce      json
// @Param        action formData string true  "Language code"
// @Param        title  formData string true  "Title"
// @Param        msg    formData string true  "Body markup"
// @Param        img    formData file   false "Image"
// @Success      201 {object} CreatedDTO
// @Failure      400 {string} string "Validation error or unknown language"
// @Failure      409 {string} string "An entry with this title already exists"
// @Failure      413 {string} string "Image too large"
// @Router       /entries [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			respond.SafeError(w, http.StatusRequestEntityTooLarge, errUploadTooLarge)
			return
		}
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid multipart form"))
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	lang := r.FormValue("action")
	if lang == "" {
		lang = r.FormValue("language")
	}
	in := ingest.SubmitInput{
		Language: lang,
		Title:    r.FormValue("title"),
		Body:     r.FormValue("msg"),
	}

	file, header, err := r.FormFile("img")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		if header.Size > 0 {
			in.ImageFilename = header.Filename
			in.Image = file
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid image upload"))
		return
	}

	res, err := h.Svc.Submit(r.Context(), in)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusRequestEntityTooLarge {
			err = errImageTooLarge
		}
		logging.FromContext(r.Context()).Info("submission rejected",
			slog.String("language", lang),
			slog.Int("status", code),
			slog.String("error", respond.SanitizeError(err)))
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusCreated, CreatedDTO{DTO: toDTO(res.Entry), Indexed: res.Indexed})
}
