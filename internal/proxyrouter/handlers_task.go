package proxyrouter

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/neuroforgede/swarmgate/internal/apierr"
)

func (rt *Router) registerTaskRoutes(sub *mux.Router) {
	sub.HandleFunc("/tasks", rt.listTasksHandler).Methods(http.MethodGet)
	sub.HandleFunc("/tasks/{id}", rt.inspectTaskHandler).Methods(http.MethodGet)
	sub.HandleFunc("/tasks/{id}/logs", rt.taskLogsHandler).Methods(http.MethodGet)
}

// listTasksHandler fetches every task and keeps only those whose parent
// service this tenant owns. Tasks carry no ownership labels of their own, so
// this cannot reuse filterOwned; each task needs its own parent-service
// lookup.
func (rt *Router) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	list, err := rt.engine.List(r.Context(), "task")
	if err != nil {
		apierr.WriteJSON(w, engineError(err))
		return
	}
	owned := make([]interface{}, 0, len(list))
	for _, t := range list {
		if rt.oracle.IsTaskOfOwnedService(r.Context(), t.ID) {
			owned = append(owned, t)
		}
	}
	writeJSON(w, http.StatusOK, owned)
}

func (rt *Router) inspectTaskHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsTaskOfOwnedService(r.Context(), id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Task is not owned."))
		return
	}
	rt.pass(w, r, http.MethodGet, "/tasks/"+id)
}

func (rt *Router) taskLogsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !rt.oracle.IsTaskOfOwnedService(r.Context(), id) {
		apierr.WriteJSON(w, apierr.Forbidden("Access denied: Task is not owned."))
		return
	}
	rt.pass(w, r, http.MethodGet, "/tasks/"+id+"/logs")
}
