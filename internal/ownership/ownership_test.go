package ownership

import (
	"context"
	"net/http"
	"testing"

	"github.com/neuroforgede/swarmgate/internal/config"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
)

type stubEngine struct {
	resources map[string]engineclient.Resource
	volumes   map[string]engineclient.Resource
	tasks     map[string]engineclient.TaskSummary
}

func (s stubEngine) Inspect(_ context.Context, kind engineclient.Kind, id string) (engineclient.Resource, error) {
	res, ok := s.resources[string(kind)+"/"+id]
	if !ok {
		return engineclient.Resource{}, &engineclient.StatusError{StatusCode: http.StatusNotFound}
	}
	return res, nil
}

func (s stubEngine) InspectVolume(_ context.Context, name string) (engineclient.Resource, error) {
	res, ok := s.volumes[name]
	if !ok {
		return engineclient.Resource{}, &engineclient.StatusError{StatusCode: http.StatusNotFound}
	}
	return res, nil
}

func (s stubEngine) InspectTask(_ context.Context, id string) (engineclient.TaskSummary, error) {
	t, ok := s.tasks[id]
	if !ok {
		return engineclient.TaskSummary{}, &engineclient.StatusError{StatusCode: http.StatusNotFound}
	}
	return t, nil
}

func testConfig() *config.Config {
	return &config.Config{
		TenantLabelValue: "acme",
		NamePrefix:       "acme",
		ServiceAllowListedNetworks: map[string]struct{}{
			"ingress": {},
		},
	}
}

func TestIsOwned_MatchesLabelAndPrefix(t *testing.T) {
	eng := stubEngine{resources: map[string]engineclient.Resource{
		"service/svc1": {ID: "svc1", Name: "acme_web", Labels: map[string]string{config.TenantLabelKey(): "acme"}},
	}}
	o := New(eng, testConfig(), nil)

	if !o.IsOwned(context.Background(), engineclient.KindService, "svc1") {
		t.Fatal("IsOwned() = false, want true")
	}
}

func TestIsOwned_WrongTenantLabel(t *testing.T) {
	eng := stubEngine{resources: map[string]engineclient.Resource{
		"service/svc1": {ID: "svc1", Name: "acme_web", Labels: map[string]string{config.TenantLabelKey(): "other"}},
	}}
	o := New(eng, testConfig(), nil)

	if o.IsOwned(context.Background(), engineclient.KindService, "svc1") {
		t.Fatal("IsOwned() = true, want false")
	}
}

func TestIsOwned_MissingNamePrefix(t *testing.T) {
	eng := stubEngine{resources: map[string]engineclient.Resource{
		"network/net1": {ID: "net1", Name: "foo", Labels: map[string]string{config.TenantLabelKey(): "acme"}},
	}}
	o := New(eng, testConfig(), nil)

	if o.IsOwned(context.Background(), engineclient.KindNetwork, "net1") {
		t.Fatal("IsOwned() = true, want false (name lacks prefix)")
	}
}

func TestIsOwned_NotFoundIsNotOwned(t *testing.T) {
	o := New(stubEngine{}, testConfig(), nil)
	if o.IsOwned(context.Background(), engineclient.KindService, "missing") {
		t.Fatal("IsOwned() = true, want false for a not-found resource")
	}
}

func TestIsTaskOfOwnedService(t *testing.T) {
	eng := stubEngine{
		resources: map[string]engineclient.Resource{
			"service/svc1": {ID: "svc1", Name: "acme_web", Labels: map[string]string{config.TenantLabelKey(): "acme"}},
		},
		tasks: map[string]engineclient.TaskSummary{
			"task1": {ID: "task1", ServiceID: "svc1"},
		},
	}
	o := New(eng, testConfig(), nil)

	if !o.IsTaskOfOwnedService(context.Background(), "task1") {
		t.Fatal("IsTaskOfOwnedService() = false, want true")
	}
}

func TestIsOwnedNetwork_AllowListedOnlyWhenRequested(t *testing.T) {
	eng := stubEngine{resources: map[string]engineclient.Resource{
		"network/ing1": {ID: "ing1", Name: "ingress", Labels: map[string]string{}},
	}}
	o := New(eng, testConfig(), nil)

	if o.IsOwnedNetwork(context.Background(), "ing1", false) {
		t.Fatal("IsOwnedNetwork(includeAllowListed=false) = true, want false")
	}
	if !o.IsOwnedNetwork(context.Background(), "ing1", true) {
		t.Fatal("IsOwnedNetwork(includeAllowListed=true) = false, want true")
	}
}
