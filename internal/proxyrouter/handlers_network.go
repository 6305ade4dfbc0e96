package proxyrouter

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/docker/docker/api/types/network"

	"github.com/neuroforgede/swarmgate/internal/apierr"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
	"github.com/neuroforgede/swarmgate/internal/specvalidate"
)

func (rt *Router) registerNetworkRoutes(sub *mux.Router) {
	sub.HandleFunc("/networks", rt.listNetworksHandler).Methods(http.MethodGet)
	sub.HandleFunc("/networks/create", rt.createNetworkHandler).Methods(http.MethodPost)
	sub.HandleFunc("/networks/{id}", rt.inspectNetworkHandler).Methods(http.MethodGet)
	sub.HandleFunc("/networks/{id}", rt.removeNetworkHandler).Methods(http.MethodDelete)
}

func (rt *Router) listNetworksHandler(w http.ResponseWriter, r *http.Request) {
	list, err := rt.engine.List(r.Context(), engineclient.KindNetwork)
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusOK, rt.filterOwned(list))
}

func (rt *Router) createNetworkHandler(w http.ResponseWriter, r *http.Request) {
	var req network.CreateRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	if apiErr := rt.validator.ValidateName(req.Name); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	req.Labels = specvalidate.StampLabels(req.Labels, rt.cfg.TenantLabelValue)

	res, err := rt.engine.CreateNetwork(r.Context(), req)
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (rt *Router) inspectNetworkHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwnedNetwork(r.Context(), id, true) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Network is not owned."))
		return
	}
	rt.pass(w, r, http.MethodGet, "/networks/"+id)
}

func (rt *Router) removeNetworkHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	// Deletion never honors the allow-list: a shared network may be
	// referenced, never destroyed, by a tenant that doesn't own it.
	if !rt.oracle.IsOwnedNetwork(r.Context(), id, false) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Network is not owned."))
		return
	}
	if err := rt.engine.RemoveNetwork(r.Context(), id); err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
