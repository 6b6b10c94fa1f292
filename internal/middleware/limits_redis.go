package middleware

import (
	"net/http"
	"strconv"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/logger"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/ratelimit"
)

// RedisThrottle limits requests per client IP through a Redis-backed
// manager, so the allowance holds across replicas. A nil manager no-ops,
// and a Redis failure fails open; throttling is protection, not a
// correctness gate.
func RedisThrottle(m *ratelimit.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, reset, err := m.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.WithContext(r.Context()).Warn("Rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(reset))
				write429(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
