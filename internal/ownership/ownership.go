// Package ownership implements the read-only ownership oracle: the single
// authority that answers whether a given engine resource belongs to this
// proxy's tenant. It never mutates anything and never maintains its own
// state; every answer is derived from a fresh engine inspection.
package ownership

import (
	"context"
	"strings"

	"github.com/neuroforgede/swarmgate/internal/config"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
	"github.com/neuroforgede/swarmgate/internal/metrics"
)

// engineInspector is the subset of *engineclient.Client the oracle depends
// on, so tests can supply a stub rather than a real socket.
type engineInspector interface {
	Inspect(ctx context.Context, kind engineclient.Kind, id string) (engineclient.Resource, error)
	InspectTask(ctx context.Context, id string) (engineclient.TaskSummary, error)
	InspectVolume(ctx context.Context, name string) (engineclient.Resource, error)
}

// Oracle answers ownership questions for one tenant's proxy instance.
type Oracle struct {
	engine  engineInspector
	cfg     *config.Config
	metrics *metrics.Metrics
}

// New builds an Oracle bound to engine and cfg. metrics may be nil in tests.
func New(engine engineInspector, cfg *config.Config, m *metrics.Metrics) *Oracle {
	return &Oracle{engine: engine, cfg: cfg, metrics: m}
}

// IsOwned reports whether the resource kind/id belongs to this tenant: its
// tenant label must match and its name must carry the configured prefix.
// Tasks have neither, so task ownership goes through IsTaskOfOwnedService
// instead. Any engine error,
// including not-found, is treated as "not owned" rather than surfaced — the
// oracle never produces ambiguity between "unowned" and "unreachable".
func (o *Oracle) IsOwned(ctx context.Context, kind engineclient.Kind, id string) bool {
	var (
		res engineclient.Resource
		err error
	)
	if kind == engineclient.KindVolume {
		res, err = o.engine.InspectVolume(ctx, id)
	} else {
		res, err = o.engine.Inspect(ctx, kind, id)
	}
	owned := err == nil && o.ownsResource(res)
	o.record(kind, owned)
	return owned
}

// IsTaskOfOwnedService reports whether taskID's parent service is owned by
// this tenant. Tasks carry no ownership labels of their own; ownership is
// derived entirely from the parent service.
func (o *Oracle) IsTaskOfOwnedService(ctx context.Context, taskID string) bool {
	task, err := o.engine.InspectTask(ctx, taskID)
	if err != nil || task.ServiceID == "" {
		o.record(engineclient.KindTask, false)
		return false
	}
	owned := o.IsOwned(ctx, engineclient.KindService, task.ServiceID)
	o.record(engineclient.KindTask, owned)
	return owned
}

// IsOwnedNetwork is IsOwned specialized for networks, with an optional
// allow-list escape hatch. Allow-listing is only ever meant to be honored for
// reads and for referencing a network from a service spec; callers making a
// mutation decision (delete) must pass includeAllowListed=false.
func (o *Oracle) IsOwnedNetwork(ctx context.Context, id string, includeAllowListed bool) bool {
	res, err := o.engine.Inspect(ctx, engineclient.KindNetwork, id)
	if err != nil {
		o.record(engineclient.KindNetwork, false)
		return false
	}
	if o.ownsResource(res) {
		o.record(engineclient.KindNetwork, true)
		return true
	}
	if includeAllowListed {
		name := res.EffectiveName()
		if _, ok := o.cfg.ServiceAllowListedNetworks[name]; ok {
			o.record(engineclient.KindNetwork, true)
			return true
		}
	}
	o.record(engineclient.KindNetwork, false)
	return false
}

// Owns applies the ownership predicate to a resource already in hand (for
// example, one entry of a list response) without a further engine round
// trip. List handlers use this to filter down to owned resources.
func (o *Oracle) Owns(res engineclient.Resource) bool {
	return o.ownsResource(res)
}

func (o *Oracle) ownsResource(res engineclient.Resource) bool {
	labels := res.EffectiveLabels()
	if labels[config.TenantLabelKey()] != o.cfg.TenantLabelValue {
		return false
	}
	return strings.HasPrefix(res.EffectiveName(), o.cfg.NamePrefix)
}

func (o *Oracle) record(kind engineclient.Kind, owned bool) {
	if o.metrics == nil {
		return
	}
	label := "false"
	if owned {
		label = "true"
	}
	o.metrics.OwnershipChecks.WithLabelValues(string(kind), label).Inc()
}
