package middleware

import (
	"net/http"
)

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. Requests advertising a larger Content-Length are
// rejected with 413 Request Entity Too Large before reaching the next handler.
// Bodies without a length are wrapped in http.MaxBytesReader, so the read
// inside the handler fails once the limit is crossed.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"error":{"code":"request_too_large","message":"request body too large"}}` + "\n"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
