package proxyrouter

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/docker/docker/api/types/swarm"

	"github.com/neuroforgede/swarmgate/internal/apierr"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
	"github.com/neuroforgede/swarmgate/internal/specvalidate"
)

func (rt *Router) registerSecretRoutes(sub *mux.Router) {
	sub.HandleFunc("/secrets", rt.listSecretsHandler).Methods(http.MethodGet)
	sub.HandleFunc("/secrets/create", rt.createSecretHandler).Methods(http.MethodPost)
	sub.HandleFunc("/secrets/{id}", rt.inspectSecretHandler).Methods(http.MethodGet)
	sub.HandleFunc("/secrets/{id}/update", rt.updateSecretHandler).Methods(http.MethodPost)
	sub.HandleFunc("/secrets/{id}", rt.removeSecretHandler).Methods(http.MethodDelete)
}

func (rt *Router) listSecretsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := rt.engine.List(r.Context(), engineclient.KindSecret)
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusOK, rt.filterOwned(list))
}

func (rt *Router) createSecretHandler(w http.ResponseWriter, r *http.Request) {
	var spec swarm.SecretSpec
	if apiErr := decodeBody(r, &spec); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	if apiErr := rt.validator.ValidateName(spec.Annotations.Name); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	rt.stampAnnotations(&spec.Annotations)

	res, err := rt.engine.CreateSecret(r.Context(), spec)
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// inspectSecretHandler returns 404, not 403, on a not-owned secret: some
// orchestrator clients treat a 403 on inspect as a hard failure during stack
// deploys, where a 404 is read as "not present yet".
func (rt *Router) inspectSecretHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindSecret, id) {
		apierr.WriteJSON(w, apierr.NotFound("Access denied: Secret is not owned."))
		return
	}
	rt.pass(w, r, http.MethodGet, "/secrets/"+id)
}

func (rt *Router) updateSecretHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindSecret, id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Secret is not owned."))
		return
	}

	var spec swarm.SecretSpec
	if apiErr := decodeBody(r, &spec); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	rt.stampAnnotations(&spec.Annotations)

	version, verr := strconv.ParseUint(r.URL.Query().Get("version"), 10, 64)
	if verr != nil {
		apierr.WriteJSON(w, apierr.BadRequest("version query parameter is required"))
		return
	}

	if err := rt.engine.UpdateSecret(r.Context(), id, version, spec); err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
}

func (rt *Router) removeSecretHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindSecret, id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Secret is not owned."))
		return
	}
	if err := rt.engine.RemoveSecret(r.Context(), id); err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stampAnnotations sets the tenant label on a swarm.Annotations value in
// place, the shared top-level label position secrets and configs carry.
func (rt *Router) stampAnnotations(ann *swarm.Annotations) {
	ann.Labels = specvalidate.StampLabels(ann.Labels, rt.cfg.TenantLabelValue)
}
