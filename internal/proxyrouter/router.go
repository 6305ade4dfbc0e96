// Package proxyrouter wires the ownership oracle, spec validator, engine
// client, and streaming passthrough into the proxy's HTTP surface. It is an
// allow-list: only the routes registered here are ever forwarded to the
// engine, and /swarm* is deliberately never registered at all.
package proxyrouter

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neuroforgede/swarmgate/internal/config"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
	"github.com/neuroforgede/swarmgate/internal/logging"
	"github.com/neuroforgede/swarmgate/internal/metrics"
	"github.com/neuroforgede/swarmgate/internal/ownership"
	"github.com/neuroforgede/swarmgate/internal/ratelimit"
	"github.com/neuroforgede/swarmgate/internal/recovery"
	"github.com/neuroforgede/swarmgate/internal/registryauth"
	"github.com/neuroforgede/swarmgate/internal/specvalidate"
)

// Router holds every collaborator a handler needs and exposes the assembled
// *mux.Router to be handed to an http.Server.
type Router struct {
	engine        *engineclient.Client
	oracle        *ownership.Oracle
	validator     *specvalidate.Validator
	registryStore *registryauth.Store
	cfg           *config.Config
	log           *logging.Logger
	metrics       *metrics.Metrics
}

// New builds a Router and returns the assembled mux.
func New(
	engine *engineclient.Client,
	oracle *ownership.Oracle,
	validator *specvalidate.Validator,
	registryStore *registryauth.Store,
	cfg *config.Config,
	log *logging.Logger,
	m *metrics.Metrics,
	limiter *ratelimit.Limiter,
) *mux.Router {
	rt := &Router{
		engine:        engine,
		oracle:        oracle,
		validator:     validator,
		registryStore: registryStore,
		cfg:           cfg,
		log:           log,
		metrics:       m,
	}

	root := mux.NewRouter()
	root.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	root.HandleFunc("/healthz", healthzHandler).Methods(http.MethodGet)

	// Every route is registered twice: once unversioned, once under an
	// optional "/v<engine-api-version>" prefix, since the engine accepts
	// both forms interchangeably.
	unversioned := root.PathPrefix("").Subrouter()
	versioned := root.PathPrefix("/v{version:[0-9][0-9.]*}").Subrouter()

	for _, sub := range []*mux.Router{unversioned, versioned} {
		rt.registerReadOnly(sub)
		rt.registerDistribution(sub)
		rt.registerServiceRoutes(sub)
		rt.registerNetworkRoutes(sub)
		rt.registerSecretRoutes(sub)
		rt.registerConfigRoutes(sub)
		rt.registerVolumeRoutes(sub)
		rt.registerTaskRoutes(sub)
	}

	root.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	// Metrics run as mux middleware, after route matching, so each request is
	// labelled with its matched route template. Requests that match no route
	// are not recorded.
	if m != nil {
		root.Use(m.Middleware)
	}

	var handler http.Handler = root
	if limiter != nil {
		handler = limiter.Middleware(handler)
	}
	// Trace-ID propagation and panic recovery wrap everything else, in that
	// order from the inside out, so every handler log line carries a trace
	// ID, and a panic anywhere in the chain below still renders the standard
	// JSON 500 rather than aborting the connection. The recovery log line
	// itself is written outside the trace middleware and has no trace ID.
	handler = logging.TraceMiddleware(handler)
	handler = recovery.Middleware(log)(handler)

	return wrapHandler(handler)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "no such endpoint"})
}

// wrapHandler returns a *mux.Router whose ServeHTTP delegates to handler,
// which has already been wrapped in whatever middleware New assembled.
// mux.Router itself satisfies http.Handler, so callers keep the same return
// type by registering the wrapped chain as a catch-all on a fresh router.
func wrapHandler(handler http.Handler) *mux.Router {
	wrapped := mux.NewRouter()
	wrapped.PathPrefix("/").Handler(handler)
	return wrapped
}
