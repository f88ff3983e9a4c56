package middleware

import (
	"log/slog"
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/ratelimit"
	"github.com/makebyjordan/chatbot-crm/utils"
)

// RateLimit answers 429 once the client address exhausts its window. A nil
// limiter disables the check and limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		if limiter == nil {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			key := utils.RealClientIP(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", "client_ip", key, "error", err)
				next(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}
			next(w, r)
		}
	}
}
