package middleware

import (
	"cardiostent/internal/cache"
	"cardiostent/internal/model"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RateLimit limits requests per client IP. Limiter failures let the request through.
func RateLimit(limiter cache.RateLimiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			allowed, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Warn("rate limiter unavailable", zap.String("client", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				log.Info("request throttled",
					zap.String("client", key),
					zap.Duration("retry_after", retryAfter),
					zap.Error(model.ErrRateLimited),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(retryAfter)))
				http.Error(w, "Too many submissions. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
