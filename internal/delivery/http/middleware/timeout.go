package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds each request's context by d. Handlers see context.DeadlineExceeded
// from storage calls once it passes. A non-positive d disables the bound.
func Timeout(d time.Duration, next http.Handler) http.Handler {
	if d <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
