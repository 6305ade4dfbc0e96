package proxyrouter

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/docker/docker/api/types/volume"

	"github.com/neuroforgede/swarmgate/internal/apierr"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
)

func (rt *Router) registerVolumeRoutes(sub *mux.Router) {
	sub.HandleFunc("/volumes", rt.listVolumesHandler).Methods(http.MethodGet)
	sub.HandleFunc("/volumes/create", rt.createVolumeHandler).Methods(http.MethodPost)
	sub.HandleFunc("/volumes/{name}", rt.inspectVolumeHandler).Methods(http.MethodGet)
	sub.HandleFunc("/volumes/{name}", rt.removeVolumeHandler).Methods(http.MethodDelete)
}

func (rt *Router) listVolumesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := rt.engine.ListVolumes(r.Context())
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"Volumes": rt.filterOwned(list)})
}

func (rt *Router) createVolumeHandler(w http.ResponseWriter, r *http.Request) {
	var opts volume.CreateOptions
	if apiErr := decodeBody(r, &opts); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	if apiErr := rt.validator.ValidateName(opts.Name); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	if apiErr := rt.validator.ValidateVolumeCreate(r.Context(), &opts); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}

	res, err := rt.engine.CreateVolume(r.Context(), opts)
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (rt *Router) inspectVolumeHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindVolume, name) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Volume is not owned."))
		return
	}
	rt.pass(w, r, http.MethodGet, "/volumes/"+name)
}

func (rt *Router) removeVolumeHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindVolume, name) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Volume is not owned."))
		return
	}
	if err := rt.engine.RemoveVolume(r.Context(), name); err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
