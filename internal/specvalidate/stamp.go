package specvalidate

import (
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/swarm"

	"github.com/neuroforgede/swarmgate/internal/config"
)

// stampedLabels returns labels with the tenant label set, overriding any
// client-supplied value for that key. labels may be nil.
func stampedLabels(labels map[string]string, tenantValue string) map[string]string {
	out := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		out[k] = v
	}
	out[config.TenantLabelKey()] = tenantValue
	return out
}

// stampService stamps the tenant label on every labelable position a service
// spec carries: the service's own labels and its container-spec labels. Mount
// VolumeOptions labels are stamped earlier, during mount validation, since
// that is the only point the mutator knows whether the source volume needs
// one.
func (v *Validator) stampService(spec *swarm.ServiceSpec) {
	spec.Annotations.Labels = stampedLabels(spec.Annotations.Labels, v.cfg.TenantLabelValue)
	if container := spec.TaskTemplate.ContainerSpec; container != nil {
		container.Labels = stampedLabels(container.Labels, v.cfg.TenantLabelValue)
	}
}

// stampVolumeOptions stamps the tenant label into a volume-typed or
// cluster-typed mount's VolumeOptions.Labels, creating VolumeOptions if the
// client didn't supply one. This is what lets a volume the engine
// materializes on first use come into existence already owned.
func stampVolumeOptions(m *mount.Mount, tenantValue string) {
	if m.VolumeOptions == nil {
		m.VolumeOptions = &mount.VolumeOptions{}
	}
	m.VolumeOptions.Labels = stampedLabels(m.VolumeOptions.Labels, tenantValue)
}

// StampLabels stamps the tenant label into a bare labels map, for the
// kinds (network, secret, config) whose spec carries no nested label
// position beyond the top level.
func StampLabels(labels map[string]string, tenantValue string) map[string]string {
	return stampedLabels(labels, tenantValue)
}
