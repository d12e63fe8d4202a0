// middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"log"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/LilVoxy/harga_pangan/metrics"
)

// RateLimit ограничивает общее число запросов в секунду (token bucket, запас 2x).
// Значение perSecond <= 0 отключает ограничение.
func RateLimit(perSecond int, m *metrics.Metrics) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), perSecond*2)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				if m != nil {
					m.RateLimited.Inc()
				}
				log.Printf("❌ Превышен лимит запросов: %s %s", r.Method, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":   true,
					"message": "Too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
