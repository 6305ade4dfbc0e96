package proxyrouter

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/neuroforgede/swarmgate/internal/apierr"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
	"github.com/neuroforgede/swarmgate/internal/registryauth"
	"github.com/neuroforgede/swarmgate/internal/streaming"
)

// pass dials the engine directly and streams its response back unmodified.
// Used for the read-only endpoints and for inspect and logs requests that
// passed their ownership check; create, update and remove go through the
// typed engine client instead.
func (rt *Router) pass(w http.ResponseWriter, r *http.Request, method, path string) {
	registryauth.StripClientAuthHeaders(r.Header)
	resp, err := rt.engine.Dial(r.Context(), method, path, r.URL.Query(), r.Header, r.Body)
	if err != nil {
		apierr.WriteJSON(w, apierr.Internal(err))
		return
	}
	if err := streaming.CopyResponse(w, resp); err != nil {
		rt.log.WithContext(r.Context()).WithError(err).Warn("proxyrouter: error copying engine response")
	}
}

// decodeBody JSON-decodes the request body into out, returning a 400 on
// malformed input.
func decodeBody(r *http.Request, out interface{}) *apierr.APIError {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return apierr.BadRequest("invalid request body: %v", err)
	}
	return nil
}

// writeJSON encodes v as the handler's entire JSON response at the given
// status, for responses the proxy constructs itself (filtered lists,
// create-response envelopes) rather than forwards verbatim.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// resolveRegistryAuth looks up stored credentials for image's registry and
// encodes them for the X-Registry-Auth header the engine expects. It returns
// an empty header when there is no stored credential and the tenant does not
// require one (anonymous pull).
func (rt *Router) resolveRegistryAuth(image string) (string, *apierr.APIError) {
	host := registryauth.RegistryFromImage(image)
	cred, found := rt.registryStore.Lookup(host)
	if !found {
		if rt.cfg.OnlyKnownRegistries {
			return "", apierr.Forbidden("Registry %s is not known", host)
		}
		return "", nil
	}
	if cred.Anonymous {
		return "", nil
	}
	header, err := registryauth.EncodeAuthHeader(cred)
	if err != nil {
		return "", apierr.Internal(err)
	}
	return header, nil
}

// probeDistribution issues the permission probe the engine uses to verify
// pull credentials, returning the raw response so callers can either stream
// it straight back (the distribution-lookup endpoint) or just check its
// status (the service create/update pre-flight).
func (rt *Router) probeDistribution(ctx context.Context, image, registryAuthHeader string) (*http.Response, *apierr.APIError) {
	header := http.Header{}
	if registryAuthHeader != "" {
		header.Set("X-Registry-Auth", registryAuthHeader)
	}
	path := "/distribution/" + image + "/json"
	resp, err := rt.engine.Dial(ctx, http.MethodGet, path, nil, header, nil)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return resp, nil
}

// checkServiceImagePermission resolves registry credentials for image and
// probes the engine's distribution endpoint, consuming and discarding the
// probe body. It is the pre-flight the spec requires before every service
// create/update; the resolved header is returned so the caller can attach it
// to the actual create/update call.
func (rt *Router) checkServiceImagePermission(ctx context.Context, image string) (string, *apierr.APIError) {
	header, apiErr := rt.resolveRegistryAuth(image)
	if apiErr != nil {
		return "", apiErr
	}
	resp, apiErr := rt.probeDistribution(ctx, image, header)
	if apiErr != nil {
		return "", apiErr
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := decodeEngineMessage(resp)
		return "", apierr.Forbidden("permission denied for image %s: %s", image, body)
	}
	return header, nil
}

func decodeEngineMessage(resp *http.Response) (string, error) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Message, nil
}

// engineError converts an engineclient error into the matching APIError,
// preserving the engine's own status code when it returned one rather than
// collapsing everything to 500.
func engineError(err error) *apierr.APIError {
	if se, ok := err.(*engineclient.StatusError); ok {
		return &apierr.APIError{Status: se.StatusCode, Message: se.Body, Err: se}
	}
	return apierr.Internal(err)
}

// filterOwned keeps only the resources in list that the oracle judges owned.
func (rt *Router) filterOwned(list []engineclient.Resource) []engineclient.Resource {
	owned := make([]engineclient.Resource, 0, len(list))
	for _, res := range list {
		if rt.oracle.Owns(res) {
			owned = append(owned, res)
		}
	}
	return owned
}
