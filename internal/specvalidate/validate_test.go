package specvalidate

import (
	"context"
	"net/http"
	"testing"

	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/api/types/volume"

	"github.com/neuroforgede/swarmgate/internal/config"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
)

type stubOracle struct {
	ownedByID     map[string]bool
	ownedNetworks map[string]bool
	allowListedOK map[string]bool
}

func (s stubOracle) IsOwned(_ context.Context, kind engineclient.Kind, id string) bool {
	return s.ownedByID[string(kind)+"/"+id]
}

func (s stubOracle) IsOwnedNetwork(_ context.Context, id string, includeAllowListed bool) bool {
	if s.ownedNetworks[id] {
		return true
	}
	return includeAllowListed && s.allowListedOK[id]
}

type stubVolumes struct {
	existing map[string]engineclient.Resource
}

func (s stubVolumes) InspectVolume(_ context.Context, name string) (engineclient.Resource, error) {
	res, ok := s.existing[name]
	if !ok {
		return engineclient.Resource{}, &engineclient.StatusError{StatusCode: http.StatusNotFound}
	}
	return res, nil
}

func testCfg() *config.Config {
	return &config.Config{
		TenantLabelValue:     "acme",
		NamePrefix:           "acme",
		AllowedMountTypes:    map[string]struct{}{"bind": {}, "volume": {}, "tmpfs": {}, "npipe": {}, "cluster": {}},
		AllowedVolumeDrivers: map[string]struct{}{"local": {}},
	}
}

func TestValidateName(t *testing.T) {
	v := New(testCfg(), stubOracle{}, stubVolumes{})

	if err := v.ValidateName(""); err == nil || err.Status != 400 {
		t.Fatalf("ValidateName(\"\") = %v, want 400", err)
	}
	if err := v.ValidateName("foo"); err == nil || err.Status != 400 {
		t.Fatalf("ValidateName(no prefix) = %v, want 400", err)
	}
	if err := v.ValidateName("acme_web"); err != nil {
		t.Fatalf("ValidateName(acme_web) = %v, want nil", err)
	}
}

func TestValidateServiceSpec_AcceptsAndStampsOwnedService(t *testing.T) {
	v := New(testCfg(), stubOracle{}, stubVolumes{})
	spec := &swarm.ServiceSpec{
		Annotations: swarm.Annotations{Name: "acme_web"},
		TaskTemplate: swarm.TaskSpec{
			ContainerSpec: &swarm.ContainerSpec{Image: "nginx"},
		},
	}

	if err := v.ValidateServiceSpec(context.Background(), spec, true); err != nil {
		t.Fatalf("ValidateServiceSpec() = %v, want nil", err)
	}
	if spec.Annotations.Labels[config.TenantLabelKey()] != "acme" {
		t.Fatalf("service labels = %v, missing tenant stamp", spec.Annotations.Labels)
	}
	if spec.TaskTemplate.ContainerSpec.Labels[config.TenantLabelKey()] != "acme" {
		t.Fatalf("container-spec labels = %v, missing tenant stamp", spec.TaskTemplate.ContainerSpec.Labels)
	}
}

func TestValidateServiceSpec_RejectsCrossTenantNetwork(t *testing.T) {
	v := New(testCfg(), stubOracle{ownedNetworks: map[string]bool{}}, stubVolumes{})
	spec := &swarm.ServiceSpec{
		Annotations: swarm.Annotations{Name: "acme_web"},
		Networks:    []swarm.NetworkAttachmentConfig{{Target: "other_net"}},
		TaskTemplate: swarm.TaskSpec{
			ContainerSpec: &swarm.ContainerSpec{Image: "nginx"},
		},
	}

	err := v.ValidateServiceSpec(context.Background(), spec, true)
	if err == nil || err.Status != 403 {
		t.Fatalf("ValidateServiceSpec() = %v, want 403", err)
	}
}

func TestValidateServiceSpec_RejectsCrossTenantVolumeMount(t *testing.T) {
	v := New(testCfg(), stubOracle{ownedByID: map[string]bool{"volume/other_data": false}}, stubVolumes{
		existing: map[string]engineclient.Resource{"other_data": {ID: "other_data", Name: "other_data"}},
	})
	spec := &swarm.ServiceSpec{
		Annotations: swarm.Annotations{Name: "acme_web"},
		TaskTemplate: swarm.TaskSpec{
			ContainerSpec: &swarm.ContainerSpec{
				Image:  "nginx",
				Mounts: []mount.Mount{{Type: mount.TypeVolume, Source: "other_data", Target: "/data"}},
			},
		},
	}

	err := v.ValidateServiceSpec(context.Background(), spec, true)
	if err == nil || err.Status != 403 {
		t.Fatalf("ValidateServiceSpec() = %v, want 403", err)
	}
}

func TestValidateServiceSpec_StampsNewVolumeMount(t *testing.T) {
	v := New(testCfg(), stubOracle{}, stubVolumes{})
	spec := &swarm.ServiceSpec{
		Annotations: swarm.Annotations{Name: "acme_web"},
		TaskTemplate: swarm.TaskSpec{
			ContainerSpec: &swarm.ContainerSpec{
				Image:  "nginx",
				Mounts: []mount.Mount{{Type: mount.TypeVolume, Source: "acme_new", Target: "/data"}},
			},
		},
	}

	if err := v.ValidateServiceSpec(context.Background(), spec, true); err != nil {
		t.Fatalf("ValidateServiceSpec() = %v, want nil", err)
	}
	got := spec.TaskTemplate.ContainerSpec.Mounts[0].VolumeOptions
	if got == nil || got.Labels[config.TenantLabelKey()] != "acme" {
		t.Fatalf("mount VolumeOptions = %+v, want tenant label stamped", got)
	}
}

func TestValidateServiceSpec_RejectsUnknownMountType(t *testing.T) {
	v := New(testCfg(), stubOracle{}, stubVolumes{})
	spec := &swarm.ServiceSpec{
		Annotations: swarm.Annotations{Name: "acme_web"},
		TaskTemplate: swarm.TaskSpec{
			ContainerSpec: &swarm.ContainerSpec{
				Image:  "nginx",
				Mounts: []mount.Mount{{Type: "bogus", Source: "x", Target: "/data"}},
			},
		},
	}

	err := v.ValidateServiceSpec(context.Background(), spec, true)
	if err == nil || err.Status != 400 {
		t.Fatalf("ValidateServiceSpec() = %v, want 400", err)
	}
}

func TestValidateServiceSpec_RejectsPortsWhenDisabled(t *testing.T) {
	v := New(testCfg(), stubOracle{}, stubVolumes{})
	spec := &swarm.ServiceSpec{
		Annotations: swarm.Annotations{Name: "acme_web"},
		TaskTemplate: swarm.TaskSpec{
			ContainerSpec: &swarm.ContainerSpec{Image: "nginx"},
		},
		EndpointSpec: &swarm.EndpointSpec{Ports: []swarm.PortConfig{{TargetPort: 80}}},
	}

	err := v.ValidateServiceSpec(context.Background(), spec, true)
	if err == nil || err.Status != 403 {
		t.Fatalf("ValidateServiceSpec() = %v, want 403", err)
	}
}

func TestValidateVolumeCreate_RequiresAllowedDriver(t *testing.T) {
	v := New(testCfg(), stubOracle{}, stubVolumes{})

	if err := v.ValidateVolumeCreate(context.Background(), &volume.CreateOptions{Name: "acme_data"}); err == nil || err.Status != 400 {
		t.Fatalf("ValidateVolumeCreate(no driver) = %v, want 400", err)
	}
	if err := v.ValidateVolumeCreate(context.Background(), &volume.CreateOptions{Name: "acme_data", Driver: "nfs"}); err == nil || err.Status != 400 {
		t.Fatalf("ValidateVolumeCreate(disallowed driver) = %v, want 400", err)
	}

	opts := &volume.CreateOptions{Name: "acme_data", Driver: "local"}
	if err := v.ValidateVolumeCreate(context.Background(), opts); err != nil {
		t.Fatalf("ValidateVolumeCreate() = %v, want nil", err)
	}
	if opts.Labels[config.TenantLabelKey()] != "acme" {
		t.Fatalf("volume labels = %v, missing tenant stamp", opts.Labels)
	}
}

func TestValidateVolumeCreate_RejectsUnownedClusterSecret(t *testing.T) {
	v := New(testCfg(), stubOracle{ownedByID: map[string]bool{}}, stubVolumes{})
	opts := &volume.CreateOptions{
		Name:   "acme_cv",
		Driver: "local",
		ClusterVolumeSpec: &volume.ClusterVolumeSpec{
			AccessMode: &volume.AccessMode{
				Secrets: []volume.Secret{{Secret: "other_secret"}},
			},
		},
	}

	err := v.ValidateVolumeCreate(context.Background(), opts)
	if err == nil || err.Status != 403 {
		t.Fatalf("ValidateVolumeCreate() = %v, want 403", err)
	}
}
