package http

import (
	"net/http"
)

// ResponseRecorder wraps an http.ResponseWriter and records what was sent through it.
type ResponseRecorder struct {
	http.ResponseWriter

	StatusCode  int
	BytesSent   int64
	wroteHeader bool
}

// NewResponseRecorder wraps w. StatusCode stays 200 until a handler writes another one.
func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

// WriteHeader records the first final status code and forwards it.
func (w *ResponseRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.StatusCode = code
		w.wroteHeader = code >= http.StatusOK
	}

	w.ResponseWriter.WriteHeader(code)
}

// Write counts the bytes sent.
func (w *ResponseRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true

	n, err := w.ResponseWriter.Write(b)
	w.BytesSent += int64(n)

	return n, err //nolint:wrapcheck
}

// Unwrap lets http.ResponseController reach the underlying writer, so the
// reverse proxy can still flush streamed answers.
func (w *ResponseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
