// Package registryauth loads and serves the proxy-managed registry
// credential overrides used to broker image pulls on the tenant's behalf.
package registryauth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/docker/docker/api/types/registry"

	"github.com/neuroforgede/swarmgate/internal/logging"
)

// DefaultHub is the registry host used for image references with no
// explicit registry segment (the public hub).
const DefaultHub = "docker.io"

// Credential is one entry of the registry-auth overrides file.
type Credential struct {
	Anonymous bool
	Auth      registry.AuthConfig
}

// Store is the read-only, startup-loaded mapping from registry host to
// stored credentials. It never changes after Load returns.
type Store struct {
	byHost map[string]Credential
}

type fileEntry struct {
	Anonymous     bool   `json:"anonymous,omitempty"`
	Username      string `json:"username,omitempty"`
	Password      string `json:"password,omitempty"`
	Email         string `json:"email,omitempty"`
	ServerAddress string `json:"serveraddress,omitempty"`
}

// Load reads the overrides file at path. A missing file is non-fatal and
// yields an empty store; a malformed file is logged and also yields an
// empty store, per the external-interfaces contract.
func Load(path string, log *logging.Logger) *Store {
	store := &Store{byHost: map[string]Credential{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && log != nil {
			log.WithError(err).Warn("registryauth: could not read overrides file")
		}
		return store
	}

	var entries map[string]fileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		if log != nil {
			log.WithError(err).Warn("registryauth: malformed overrides file, ignoring")
		}
		return store
	}

	for host, entry := range entries {
		cred := Credential{Anonymous: entry.Anonymous}
		cred.Auth = registry.AuthConfig{
			Username:      entry.Username,
			Password:      entry.Password,
			Email:         entry.Email,
			ServerAddress: entry.ServerAddress,
		}
		if cred.Auth.ServerAddress == "" {
			cred.Auth.ServerAddress = host
		}
		store.byHost[host] = cred
	}

	return store
}

// Lookup returns the stored credential for host, if any.
func (s *Store) Lookup(host string) (Credential, bool) {
	cred, ok := s.byHost[host]
	return cred, ok
}

// RegistryFromImage extracts the registry host from an image reference: the
// segment before the first "/" when that segment looks like a host
// (contains a "." or ":" or is "localhost"), otherwise DefaultHub.
func RegistryFromImage(image string) string {
	image = strings.TrimSpace(image)
	idx := strings.Index(image, "/")
	if idx < 0 {
		return DefaultHub
	}
	first := image[:idx]
	if first == "localhost" || strings.ContainsAny(first, ".:") {
		return first
	}
	return DefaultHub
}

// EncodeAuthHeader base64url-encodes the credential's auth config as JSON,
// suitable for the engine's X-Registry-Auth header. Anonymous credentials
// encode to an empty auth config (no username/password), matching the
// engine's anonymous-pull contract.
func EncodeAuthHeader(cred Credential) (string, error) {
	auth := cred.Auth
	if cred.Anonymous {
		auth = registry.AuthConfig{ServerAddress: cred.Auth.ServerAddress}
	}
	raw, err := json.Marshal(auth)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// StripClientAuthHeaders removes any client-supplied registry-auth headers.
// Only proxy-stored credentials are ever forwarded to the engine.
func StripClientAuthHeaders(header http.Header) {
	header.Del("X-Registry-Auth")
	header.Del("X-Registry-Config")
}
