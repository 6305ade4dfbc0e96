package proxyrouter

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/docker/docker/api/types/swarm"

	"github.com/neuroforgede/swarmgate/internal/apierr"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
)

func (rt *Router) registerServiceRoutes(sub *mux.Router) {
	sub.HandleFunc("/services", rt.listServicesHandler).Methods(http.MethodGet)
	sub.HandleFunc("/services/create", rt.createServiceHandler).Methods(http.MethodPost)
	sub.HandleFunc("/services/{id}", rt.inspectServiceHandler).Methods(http.MethodGet)
	sub.HandleFunc("/services/{id}/update", rt.updateServiceHandler).Methods(http.MethodPost)
	sub.HandleFunc("/services/{id}", rt.removeServiceHandler).Methods(http.MethodDelete)
	sub.HandleFunc("/services/{id}/logs", rt.serviceLogsHandler).Methods(http.MethodGet)
}

func (rt *Router) listServicesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := rt.engine.List(r.Context(), engineclient.KindService)
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusOK, rt.filterOwned(list))
}

func (rt *Router) createServiceHandler(w http.ResponseWriter, r *http.Request) {
	var spec swarm.ServiceSpec
	if apiErr := decodeBody(r, &spec); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	if apiErr := rt.validator.ValidateServiceSpec(r.Context(), &spec, true); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}

	registryAuth, apiErr := rt.imagePermission(r.Context(), &spec)
	if apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}

	res, err := rt.engine.CreateService(r.Context(), spec, registryAuth)
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (rt *Router) inspectServiceHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindService, id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Service is not owned."))
		return
	}
	rt.pass(w, r, http.MethodGet, "/services/"+id)
}

func (rt *Router) updateServiceHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindService, id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Service is not owned."))
		return
	}

	var spec swarm.ServiceSpec
	if apiErr := decodeBody(r, &spec); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}
	if apiErr := rt.validator.ValidateServiceSpec(r.Context(), &spec, false); apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}

	registryAuth, apiErr := rt.imagePermission(r.Context(), &spec)
	if apiErr != nil {
		apierr.WriteJSON(w, apiErr)
		return
	}

	version, verr := strconv.ParseUint(r.URL.Query().Get("version"), 10, 64)
	if verr != nil {
		apierr.WriteJSON(w, apierr.BadRequest("version query parameter is required"))
		return
	}

	if err := rt.engine.UpdateService(r.Context(), id, version, spec, registryAuth); err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
}

func (rt *Router) removeServiceHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindService, id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Service is not owned."))
		return
	}
	if err := rt.engine.RemoveService(r.Context(), id); err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) serviceLogsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsOwned(r.Context(), engineclient.KindService, id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Service is not owned."))
		return
	}
	rt.pass(w, r, http.MethodGet, "/services/"+id+"/logs")
}

// imagePermission runs the pre-flight permission probe for spec's image, if
// it declares one. Services with no container spec or no image (config-only
// updates) skip the probe entirely.
func (rt *Router) imagePermission(ctx context.Context, spec *swarm.ServiceSpec) (string, *apierr.APIError) {
	if spec.TaskTemplate.ContainerSpec == nil || spec.TaskTemplate.ContainerSpec.Image == "" {
		return "", nil
	}
	return rt.checkServiceImagePermission(ctx, spec.TaskTemplate.ContainerSpec.Image)
}
