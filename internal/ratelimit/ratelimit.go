// Package ratelimit throttles the proxy's outbound pressure on the engine.
// One swarmgate instance fronts one tenant, so a single token bucket for the
// whole instance is enough; there is no per-client key to shard on.
package ratelimit

import (
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/neuroforgede/swarmgate/internal/apierr"
)

// Limiter wraps a token-bucket rate.Limiter behind an http.Handler middleware.
type Limiter struct {
	limiter *rate.Limiter
}

// New builds a Limiter allowing requestsPerSecond sustained requests with a
// burst of up to burst. A requestsPerSecond of zero disables limiting.
func New(requestsPerSecond, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = requestsPerSecond
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Middleware rejects requests past the bucket's rate with 429 and a
// Retry-After hint. A nil Limiter (disabled) passes every request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(1))
			apierr.WriteJSON(w, apierr.TooManyRequests("Rate limit exceeded, retry shortly."))
			return
		}
		next.ServeHTTP(w, r)
	})
}
