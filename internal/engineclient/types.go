package engineclient

// Kind enumerates the resource kinds the proxy understands.
type Kind string

const (
	KindService Kind = "service"
	KindTask    Kind = "task"
	KindNetwork Kind = "network"
	KindSecret  Kind = "secret"
	KindConfig  Kind = "config"
	KindVolume  Kind = "volume"
)

// basePaths maps a Kind to its collection path on the engine API. Volumes are
// the one kind identified by name rather than ID, handled by their own
// InspectVolume/ListVolumes/RemoveVolume helpers.
var basePaths = map[Kind]string{
	KindService: "/services",
	KindTask:    "/tasks",
	KindNetwork: "/networks",
	KindSecret:  "/secrets",
	KindConfig:  "/configs",
	KindVolume:  "/volumes",
}

// Resource is the minimal shape the ownership oracle needs out of an
// inspect/list response: identity, name, labels, and (for tasks) the parent
// service. It is decoded locally rather than through the full Docker SDK
// types, since those fields are stable across engine API versions while the
// rest of a service/task/volume body is not.
type Resource struct {
	ID        string            `json:"ID"`
	Name      string            `json:"Name,omitempty"`
	Labels    map[string]string `json:"Labels,omitempty"`
	ServiceID string            `json:"ServiceID,omitempty"`
	Spec      struct {
		Name   string            `json:"Name,omitempty"`
		Labels map[string]string `json:"Labels,omitempty"`
	} `json:"Spec"`
}

// EffectiveName returns the resource's name, preferring the top-level Name
// (volumes, networks) and falling back to Spec.Name (services, secrets,
// configs).
func (r Resource) EffectiveName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Spec.Name
}

// EffectiveLabels returns the spec-level labels when the resource has any
// (services, secrets, configs) and the top-level labels otherwise (volumes,
// networks). The two maps are not merged.
func (r Resource) EffectiveLabels() map[string]string {
	if len(r.Spec.Labels) > 0 {
		return r.Spec.Labels
	}
	return r.Labels
}

// TaskSummary is the minimal decode shape for a task list/inspect entry,
// providing just enough to resolve ownership through the parent service.
type TaskSummary struct {
	ID        string `json:"ID"`
	ServiceID string `json:"ServiceID,omitempty"`
}
