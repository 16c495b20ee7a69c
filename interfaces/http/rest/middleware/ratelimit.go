package middleware

import (
	"net"
	"net/http"

	"github.com/Sk16er/Scholar-chat/pkg/auth"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// RateLimit throttles requests per client address. Run it after RealIP so
// RemoteAddr carries the forwarded client address.
func RateLimit(limiter auth.RateLimiter, errs *pkgerrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				errs.Handle(w, r, err)
				return
			}
			if !allowed {
				errs.Handle(w, r, pkgerrors.NewRateLimitError(0, ""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
