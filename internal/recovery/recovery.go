// Package recovery guards the proxy's HTTP surface against handler panics.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/neuroforgede/swarmgate/internal/apierr"
	"github.com/neuroforgede/swarmgate/internal/logging"
)

// Middleware recovers from a panic in next, logs it with a stack trace, and
// renders the proxy's standard {"message": "..."} 500 instead of letting
// net/http abort the connection with no body.
func Middleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithContext(r.Context()).WithFields(map[string]interface{}{
						"panic":       fmt.Sprintf("%v", rec),
						"stack":       string(debug.Stack()),
						"path":        r.URL.Path,
						"method":      r.Method,
						"remote_addr": r.RemoteAddr,
					}).Error("proxyrouter: panic recovered")

					apierr.WriteJSON(w, apierr.Internal(fmt.Errorf("panic: %v", rec)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
