// Package specvalidate validates and stamps create/update request bodies
// before they reach the engine. Structural violations are rejected with 400s
// and policy violations with 403s; checks run in a fixed order and the first
// failure is returned, so a service spec's referenced networks are checked
// against the engine before its mount types are.
package specvalidate

import (
	"context"
	"strings"

	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/api/types/volume"

	"github.com/neuroforgede/swarmgate/internal/apierr"
	"github.com/neuroforgede/swarmgate/internal/config"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
	"github.com/neuroforgede/swarmgate/internal/metrics"
)

// knownMountTypes is the full set the engine itself understands, independent
// of what this tenant's configuration allows.
var knownMountTypes = map[mount.Type]struct{}{
	mount.TypeBind:      {},
	mount.TypeVolume:    {},
	mount.TypeTmpfs:     {},
	mount.TypeNamedPipe: {},
	mount.TypeCluster:   {},
}

// ownershipChecker is the subset of *ownership.Oracle the validator needs.
type ownershipChecker interface {
	IsOwned(ctx context.Context, kind engineclient.Kind, id string) bool
	IsOwnedNetwork(ctx context.Context, id string, includeAllowListed bool) bool
}

// volumeInspector is the subset of *engineclient.Client the validator needs
// to tell "unowned" apart from "doesn't exist yet".
type volumeInspector interface {
	InspectVolume(ctx context.Context, name string) (engineclient.Resource, error)
}

// Validator holds the configuration and collaborators every Validate*
// function needs: the tenant's policy knobs, the ownership oracle, and an
// engine client for the existence probes ownership alone can't answer.
type Validator struct {
	cfg     *config.Config
	oracle  ownershipChecker
	engine  volumeInspector
	metrics *metrics.Metrics
}

// New builds a Validator bound to cfg, oracle, and engine.
func New(cfg *config.Config, oracle ownershipChecker, engine volumeInspector) *Validator {
	return &Validator{cfg: cfg, oracle: oracle, engine: engine}
}

// SetMetrics attaches the collector reject records against. Left unset,
// reject simply skips recording; tests construct a Validator without ever
// calling this.
func (v *Validator) SetMetrics(m *metrics.Metrics) {
	v.metrics = m
}

// reject records a validation rejection against ValidationRejects and
// returns apiErr unchanged, so call sites can wrap their existing return
// statements without restructuring control flow.
func (v *Validator) reject(kind, reason string, apiErr *apierr.APIError) *apierr.APIError {
	if v.metrics != nil {
		v.metrics.ValidationRejects.WithLabelValues(kind, reason).Inc()
	}
	return apiErr
}

// ValidateName enforces the create-time name-prefix rule. Updates do not
// call this; the engine rejects name changes on update itself.
func (v *Validator) ValidateName(name string) *apierr.APIError {
	if name == "" {
		return v.reject("name", "name_required", apierr.BadRequest("Name is required"))
	}
	if !strings.HasPrefix(name, v.cfg.NamePrefix) {
		return v.reject("name", "name_prefix", apierr.BadRequest("Name must start with %q", v.cfg.NamePrefix))
	}
	return nil
}

// ValidateServiceSpec runs every service-create/update policy check: name
// prefix, referenced networks, referenced secrets/configs, mount rules, and
// endpoint port exposure. It mutates spec in place, stamping the tenant label
// at every labelable position once validation passes.
func (v *Validator) ValidateServiceSpec(ctx context.Context, spec *swarm.ServiceSpec, requireName bool) *apierr.APIError {
	if requireName {
		if err := v.ValidateName(spec.Annotations.Name); err != nil {
			return err
		}
	}

	for _, attachment := range spec.Networks {
		if !v.oracle.IsOwnedNetwork(ctx, attachment.Target, true) {
			return v.reject("network", "not_owned", apierr.Forbidden("Network %s is not owned", attachment.Target))
		}
	}
	if spec.TaskTemplate.Networks != nil {
		for _, attachment := range spec.TaskTemplate.Networks {
			if !v.oracle.IsOwnedNetwork(ctx, attachment.Target, true) {
				return v.reject("network", "not_owned", apierr.Forbidden("Network %s is not owned", attachment.Target))
			}
		}
	}

	container := spec.TaskTemplate.ContainerSpec
	if container != nil {
		for _, ref := range container.Secrets {
			if ref.SecretID != "" && !v.oracle.IsOwned(ctx, engineclient.KindSecret, ref.SecretID) {
				return v.reject("secret", "not_owned", apierr.Forbidden("Secret %s is not owned", ref.SecretName))
			}
		}
		for _, ref := range container.Configs {
			if ref.ConfigID != "" && !v.oracle.IsOwned(ctx, engineclient.KindConfig, ref.ConfigID) {
				return v.reject("config", "not_owned", apierr.Forbidden("Config %s is not owned", ref.ConfigName))
			}
		}
		for i := range container.Mounts {
			if err := v.validateMount(ctx, &container.Mounts[i]); err != nil {
				return err
			}
		}
	}

	if spec.EndpointSpec != nil && len(spec.EndpointSpec.Ports) > 0 && !v.cfg.AllowPortExpose {
		return v.reject("service", "port_expose_disallowed", apierr.Forbidden("Exposing ports is not allowed"))
	}

	v.stampService(spec)
	return nil
}

func (v *Validator) validateMount(ctx context.Context, m *mount.Mount) *apierr.APIError {
	if _, known := knownMountTypes[m.Type]; !known {
		return v.reject("mount", "type_unsupported", apierr.BadRequest("Mount type %s is not supported", m.Type))
	}
	if _, allowed := v.cfg.AllowedMountTypes[string(m.Type)]; !allowed {
		return v.reject("mount", "type_disallowed", apierr.BadRequest("Mount type %s is not allowed", m.Type))
	}

	if m.Type != mount.TypeVolume && m.Type != mount.TypeCluster {
		return nil
	}

	_, err := v.engine.InspectVolume(ctx, m.Source)
	switch {
	case err == nil:
		if !v.oracle.IsOwned(ctx, engineclient.KindVolume, m.Source) {
			return v.reject("volume", "not_owned", apierr.Forbidden("Volume %s is not owned", m.Source))
		}
	case engineclient.IsNotFound(err):
		stampVolumeOptions(m, v.cfg.TenantLabelValue)
	default:
		return v.reject("volume", "unverifiable", apierr.Forbidden("Volume %s could not be verified", m.Source))
	}
	return nil
}

// ValidateVolumeCreate enforces the volume-create policy: a required,
// allow-listed driver, and ownership of every secret a cluster volume spec
// references. It stamps the tenant label on success.
func (v *Validator) ValidateVolumeCreate(ctx context.Context, opts *volume.CreateOptions) *apierr.APIError {
	if opts.Driver == "" {
		return v.reject("volume", "driver_required", apierr.BadRequest("Driver is required"))
	}
	if _, ok := v.cfg.AllowedVolumeDrivers[opts.Driver]; !ok {
		return v.reject("volume", "driver_disallowed", apierr.BadRequest("Driver %s is not allowed", opts.Driver))
	}

	if opts.ClusterVolumeSpec != nil && opts.ClusterVolumeSpec.AccessMode != nil {
		for _, secretRef := range opts.ClusterVolumeSpec.AccessMode.Secrets {
			if !v.oracle.IsOwned(ctx, engineclient.KindSecret, secretRef.Secret) {
				return v.reject("secret", "not_owned", apierr.Forbidden("Secret %s is not owned", secretRef.Secret))
			}
		}
	}

	opts.Labels = stampedLabels(opts.Labels, v.cfg.TenantLabelValue)
	return nil
}
