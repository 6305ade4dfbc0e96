package proxyrouter

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/neuroforgede/swarmgate/internal/apierr"
	"github.com/neuroforgede/swarmgate/internal/streaming"
)

// healthzHandler reports liveness of the proxy process itself. It never
// contacts the engine: an engine outage is not a reason to fail the proxy's
// own liveness probe and trigger a restart loop.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// registerReadOnly mounts the unrestricted read-only surface: these never
// consult the ownership oracle, but client-supplied registry-auth headers
// are still stripped before forwarding, per the external-interfaces
// contract.
func (rt *Router) registerReadOnly(sub *mux.Router) {
	sub.HandleFunc("/_ping", rt.readOnlyPassthrough(http.MethodGet, "/_ping")).Methods(http.MethodGet, http.MethodHead)
	sub.HandleFunc("/version", rt.readOnlyPassthrough(http.MethodGet, "/version")).Methods(http.MethodGet)
	sub.HandleFunc("/info", rt.readOnlyPassthrough(http.MethodGet, "/info")).Methods(http.MethodGet)
	sub.HandleFunc("/nodes", rt.readOnlyPassthrough(http.MethodGet, "/nodes")).Methods(http.MethodGet)
	sub.HandleFunc("/nodes/{id}", rt.nodeInspectHandler).Methods(http.MethodGet)
}

func (rt *Router) readOnlyPassthrough(method, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt.pass(w, r, method, path)
	}
}

func (rt *Router) nodeInspectHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rt.pass(w, r, http.MethodGet, "/nodes/"+id)
}

// registerDistribution mounts the image distribution lookup, which doubles
// as the permission-probe endpoint for pull credentials.
func (rt *Router) registerDistribution(sub *mux.Router) {
	sub.HandleFunc("/distribution/{image:.+}/json", rt.distributionHandler).Methods(http.MethodGet)
}

func (rt *Router) distributionHandler(w http.ResponseWriter, r *http.Request) {
	image := mux.Vars(r)["image"]

	header, apiErr := rt.resolveRegistryAuth(image)
	if apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}

	resp, apiErr := rt.probeDistribution(r.Context(), image, header)
	if apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	if err := streaming.CopyResponse(w, resp); err != nil {
		rt.log.WithContext(r.Context()).WithError(err).Warn("proxyrouter: error copying distribution response")
	}
}
