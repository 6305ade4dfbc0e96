package engineclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/api/types/volume"
)

// IDResponse is the engine's common create-response envelope.
type IDResponse struct {
	ID       string   `json:"ID"`
	Warnings []string `json:"Warnings,omitempty"`
}

func (c *Client) create(ctx context.Context, path string, body interface{}, registryAuth string) (IDResponse, error) {
	var res IDResponse
	if err := c.doBody(ctx, "POST", path, nil, body, registryAuth, &res); err != nil {
		return IDResponse{}, err
	}
	return res, nil
}

func (c *Client) doBody(ctx context.Context, method, path string, query url.Values, body interface{}, registryAuth string, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("engineclient: encoding request body: %w", err)
	}

	header := http.Header{"Content-Type": []string{"application/json"}}
	if registryAuth != "" {
		header.Set("X-Registry-Auth", registryAuth)
	}

	resp, err := c.Dial(ctx, method, path, query, header, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody bytes.Buffer
		errBody.ReadFrom(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: errBody.String()}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateService creates a service from spec, forwarding registryAuth (already
// resolved and encoded by the registry-auth broker) if non-empty.
func (c *Client) CreateService(ctx context.Context, spec swarm.ServiceSpec, registryAuth string) (IDResponse, error) {
	return c.create(ctx, "/services/create", spec, registryAuth)
}

// UpdateService updates the service id to spec at the given version,
// forwarding registryAuth the same way CreateService does.
func (c *Client) UpdateService(ctx context.Context, id string, version uint64, spec swarm.ServiceSpec, registryAuth string) error {
	q := url.Values{"version": {strconv.FormatUint(version, 10)}}
	path := fmt.Sprintf("/services/%s/update", url.PathEscape(id))
	return c.doBody(ctx, "POST", path, q, spec, registryAuth, nil)
}

// RemoveService removes the service id.
func (c *Client) RemoveService(ctx context.Context, id string) error {
	return c.remove(ctx, fmt.Sprintf("/services/%s", url.PathEscape(id)))
}

// CreateNetwork creates a network from req.
func (c *Client) CreateNetwork(ctx context.Context, req network.CreateRequest) (IDResponse, error) {
	return c.create(ctx, "/networks/create", req, "")
}

// RemoveNetwork removes the network id.
func (c *Client) RemoveNetwork(ctx context.Context, id string) error {
	return c.remove(ctx, fmt.Sprintf("/networks/%s", url.PathEscape(id)))
}

// CreateSecret creates a secret from spec.
func (c *Client) CreateSecret(ctx context.Context, spec swarm.SecretSpec) (IDResponse, error) {
	return c.create(ctx, "/secrets/create", spec, "")
}

// UpdateSecret updates the secret id's spec (labels only, per the engine's
// contract) at the given version.
func (c *Client) UpdateSecret(ctx context.Context, id string, version uint64, spec swarm.SecretSpec) error {
	q := url.Values{"version": {strconv.FormatUint(version, 10)}}
	path := fmt.Sprintf("/secrets/%s/update", url.PathEscape(id))
	return c.doBody(ctx, "POST", path, q, spec, "", nil)
}

// RemoveSecret removes the secret id.
func (c *Client) RemoveSecret(ctx context.Context, id string) error {
	return c.remove(ctx, fmt.Sprintf("/secrets/%s", url.PathEscape(id)))
}

// CreateConfig creates a config from spec.
func (c *Client) CreateConfig(ctx context.Context, spec swarm.ConfigSpec) (IDResponse, error) {
	return c.create(ctx, "/configs/create", spec, "")
}

// UpdateConfig updates the config id's spec at the given version.
func (c *Client) UpdateConfig(ctx context.Context, id string, version uint64, spec swarm.ConfigSpec) error {
	q := url.Values{"version": {strconv.FormatUint(version, 10)}}
	path := fmt.Sprintf("/configs/%s/update", url.PathEscape(id))
	return c.doBody(ctx, "POST", path, q, spec, "", nil)
}

// RemoveConfig removes the config id.
func (c *Client) RemoveConfig(ctx context.Context, id string) error {
	return c.remove(ctx, fmt.Sprintf("/configs/%s", url.PathEscape(id)))
}

// CreateVolume creates a volume from opts and returns its decoded resource.
func (c *Client) CreateVolume(ctx context.Context, opts volume.CreateOptions) (Resource, error) {
	var res Resource
	if err := c.doBody(ctx, "POST", "/volumes/create", nil, opts, "", &res); err != nil {
		return Resource{}, err
	}
	return res, nil
}

// RemoveVolume removes the volume name.
func (c *Client) RemoveVolume(ctx context.Context, name string) error {
	return c.remove(ctx, fmt.Sprintf("/volumes/%s", url.PathEscape(name)))
}

func (c *Client) remove(ctx context.Context, path string) error {
	resp, err := c.Dial(ctx, "DELETE", path, nil, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody bytes.Buffer
		errBody.ReadFrom(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: errBody.String()}
	}
	return nil
}
