package proxyrouter

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/docker/docker/api/types/swarm"

	"github.com/neuroforgede/swarmgate/internal/apierr"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
)

func (rt *Router) registerConfigRoutes(sub *mux.Router) {
	sub.HandleFunc("/configs", rt.listConfigsHandler).Methods(http.MethodGet)
	sub.HandleFunc("/configs/create", rt.createConfigHandler).Methods(http.MethodPost)
	sub.HandleFunc("/configs/{id}", rt.inspectConfigHandler).Methods(http.MethodGet)
	sub.HandleFunc("/configs/{id}/update", rt.updateConfigHandler).Methods(http.MethodPost)
	sub.HandleFunc("/configs/{id}", rt.removeConfigHandler).Methods(http.MethodDelete)
}

func (rt *Router) listConfigsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := rt.engine.List(r.Context(), engineclient.KindConfig)
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusOK, rt.filterOwned(list))
}

func (rt *Router) createConfigHandler(w http.ResponseWriter, r *http.Request) {
	var spec swarm.ConfigSpec
	if apiErr := decodeBody(r, &spec); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	if apiErr := rt.validator.ValidateName(spec.Annotations.Name); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	rt.stampAnnotations(&spec.Annotations)

	res, err := rt.engine.CreateConfig(r.Context(), spec)
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// inspectConfigHandler returns 404, not 403, on a not-owned config, for the
// same orchestrator-client compatibility reason as secret inspect.
func (rt *Router) inspectConfigHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindConfig, id) {
		apierr.WriteJSON(w, apierr.NotFound("Access denied: Config is not owned."))
		return
	}
	rt.pass(w, r, http.MethodGet, "/configs/"+id)
}

func (rt *Router) updateConfigHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindConfig, id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Config is not owned."))
		return
	}

	var spec swarm.ConfigSpec
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

	if err := rt.engine.UpdateConfig(r.Context(), id, version, spec); err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
}

func (rt *Router) removeConfigHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindConfig, id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Config is not owned."))
		return
	}
	if err := rt.engine.RemoveConfig(r.Context(), id); err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
