package server

import (
	"net/http"
)

// securityHeaders sets a conservative baseline on every response. The CSP
// allows remote images because employer logos and avatars are served from
// backend-controlled URLs.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:; style-src 'self'")
		next.ServeHTTP(w, r)
	})
}
