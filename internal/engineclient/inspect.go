package engineclient

import (
	"context"
	"fmt"
	"net/url"
)

// Inspect fetches a single resource of kind by id and decodes it into the
// minimal Resource shape used for ownership checks.
func (c *Client) Inspect(ctx context.Context, kind Kind, id string) (Resource, error) {
	base, ok := basePaths[kind]
	if !ok {
		return Resource{}, fmt.Errorf("engineclient: unknown kind %q", kind)
	}
	var res Resource
	path := fmt.Sprintf("%s/%s", base, url.PathEscape(id))
	if err := c.DoJSON(ctx, "GET", path, nil, &res); err != nil {
		return Resource{}, err
	}
	return res, nil
}

// List fetches every resource of kind visible to the engine. Callers are
// expected to filter the result down to owned resources themselves; the
// engine has no tenant concept to filter server-side.
func (c *Client) List(ctx context.Context, kind Kind) ([]Resource, error) {
	base, ok := basePaths[kind]
	if !ok {
		return nil, fmt.Errorf("engineclient: unknown kind %q", kind)
	}
	var res []Resource
	if err := c.DoJSON(ctx, "GET", base, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// InspectTask fetches a single task, decoded just far enough to resolve its
// parent service for ownership.
func (c *Client) InspectTask(ctx context.Context, id string) (TaskSummary, error) {
	var t TaskSummary
	path := fmt.Sprintf("/tasks/%s", url.PathEscape(id))
	if err := c.DoJSON(ctx, "GET", path, nil, &t); err != nil {
		return TaskSummary{}, err
	}
	return t, nil
}

// InspectVolume fetches a single volume by name. Volumes have no ID distinct
// from their name, unlike every other kind.
func (c *Client) InspectVolume(ctx context.Context, name string) (Resource, error) {
	var res Resource
	path := fmt.Sprintf("/volumes/%s", url.PathEscape(name))
	if err := c.DoJSON(ctx, "GET", path, nil, &res); err != nil {
		return Resource{}, err
	}
	return res, nil
}

// ListVolumes fetches every volume. The engine wraps the list in an envelope
// with a top-level "Volumes" key, unlike the other list endpoints.
func (c *Client) ListVolumes(ctx context.Context) ([]Resource, error) {
	var envelope struct {
		Volumes []Resource `json:"Volumes"`
	}
	if err := c.DoJSON(ctx, "GET", "/volumes", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Volumes, nil
}
