package entry

import (
	"errors"
	"net/http"
	"os"

	"newsdesk/internal/handler/http/respond"
	"newsdesk/internal/infra/assets"
	"newsdesk/internal/repository"
)

var errImageNotFound = errors.New("image not found")

type ImageHandler struct{ Assets repository.AssetStore }

// ServeHTTP serves a stored image. Assets are never rewritten, so responses
// are cacheable indefinitely.
func (h ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, err := h.Assets.Path(r.PathValue("name"))
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, errImageNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if assets.IsNotFound(err) {
			respond.SafeError(w, http.StatusNotFound, errImageNotFound)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		respond.SafeError(w, http.StatusNotFound, errImageNotFound)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	// uploads may be SVG; never let one run script on this origin
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
