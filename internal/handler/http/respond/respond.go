// Package respond writes JSON responses and keeps internal error details
// out of them.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// safePhrases mark error messages that describe the client's input and may
// be returned verbatim.
var safePhrases = []string{
	"required",
	"invalid",
	"not found",
	"not configured",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
	"too large",
	"validation",
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers are already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": err.Error()} with the given status code.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// SafeError writes err only when it is a client error whose message is known
// to be safe. Everything else, and every 5xx, becomes "internal server error"
// and the masked original is logged.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	if code < 500 && IsSafeMessage(msg) {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// IsSafeMessage reports whether msg reads as a validation message.
func IsSafeMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range safePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
