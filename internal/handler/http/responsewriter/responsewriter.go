// Package responsewriter records the status and size of a response for the
// logging and metrics middleware.
package responsewriter

import (
	"net/http"
)

// ResponseWriter wraps http.ResponseWriter and remembers what was written.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int
	headerWritten bool
}

// Wrap returns w wrapped. The status defaults to 200.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader records the first status code only.
func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.statusCode = statusCode
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

// StatusCode returns the recorded status.
func (w *ResponseWriter) StatusCode() int { return w.statusCode }

// BytesWritten returns the body size written so far.
func (w *ResponseWriter) BytesWritten() int { return w.bytesWritten }

// Unwrap lets http.ResponseController reach the underlying writer, which
// http.ServeContent relies on for images.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
