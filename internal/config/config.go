// Package config loads swarmgate's process-wide configuration from the
// environment, once, at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the immutable, process-wide configuration for one tenant proxy
// instance. It is read once at startup; changing it requires a restart.
type Config struct {
	// TenantLabelValue identifies the tenant this proxy instance fronts.
	// Sourced from TENANT_NAME, falling back to the legacy OWNER_LABEL_VALUE.
	TenantLabelValue string

	// NamePrefix is the required prefix on every newly created resource name.
	// Defaults to TenantLabelValue.
	NamePrefix string

	// AllowedVolumeDrivers is the set of volume drivers permitted on create.
	AllowedVolumeDrivers map[string]struct{}

	// AllowedMountTypes is the set of mount types permitted in task templates.
	AllowedMountTypes map[string]struct{}

	// AllowPortExpose enables EndpointSpec.Ports on service create/update.
	AllowPortExpose bool

	// ServiceAllowListedNetworks are shared network names referenceable by
	// services without being owned by the tenant.
	ServiceAllowListedNetworks map[string]struct{}

	// OnlyKnownRegistries rejects image pulls whose registry has no stored
	// credentials.
	OnlyKnownRegistries bool

	// RegistryAuthOverridesPath is the JSON credentials file path.
	RegistryAuthOverridesPath string

	// EngineSocketPath is the Unix socket the engine listens on.
	EngineSocketPath string

	// ListenAddr is the network address this proxy listens on.
	ListenAddr string

	// RateLimitPerSecond caps sustained requests per second across the whole
	// proxy instance. Zero disables rate limiting.
	RateLimitPerSecond int

	// RateLimitBurst is the token-bucket burst size for the rate limiter.
	RateLimitBurst int
}

const (
	tenantLabelKey = "com.swarmgate.owner"

	defaultAllowedVolumeDrivers = "local"
	defaultAllowedMountTypes    = "bind,volume,tmpfs,npipe,cluster"
	defaultRegistryAuthPath     = "/run/secrets/registry_auth_overrides"
	defaultEngineSocketPath     = "/var/run/docker.sock"
	defaultListenAddr           = ":2375"
)

// TenantLabelKey is the fixed reverse-DNS label key every resource is
// stamped and checked against. It is the same for every tenant; only the
// label *value* (Config.TenantLabelValue) varies per proxy instance.
func TenantLabelKey() string { return tenantLabelKey }

// Load reads configuration from the process environment. It returns an error
// if required configuration (the tenant identity) is missing, matching the
// "fatal if missing" contract in the external-interfaces table.
func Load() (*Config, error) {
	tenant := firstNonEmpty(GetEnv("TENANT_NAME", ""), GetEnv("OWNER_LABEL_VALUE", ""))
	if tenant == "" {
		return nil, fmt.Errorf("TENANT_NAME (or legacy OWNER_LABEL_VALUE) is required")
	}

	cfg := &Config{
		TenantLabelValue:           tenant,
		NamePrefix:                 GetEnv("NAME_PREFIX", tenant),
		AllowedVolumeDrivers:       toSet(GetEnvCSV("ALLOWED_REGULAR_VOLUMES_DRIVERS", defaultAllowedVolumeDrivers)),
		AllowedMountTypes:          toSet(GetEnvCSV("ALLOWED_VOLUME_TYPES", defaultAllowedMountTypes)),
		AllowPortExpose:            GetEnvBool("ALLOW_PORT_EXPOSE", false),
		ServiceAllowListedNetworks: toSet(GetEnvCSV("SERVICE_ALLOW_LISTED_NETWORKS", "")),
		OnlyKnownRegistries:        GetEnvBool("ONLY_KNOWN_REGISTRIES", false),
		RegistryAuthOverridesPath:  GetEnv("REGISTRY_AUTH_OVERRIDES_PATH", defaultRegistryAuthPath),
		EngineSocketPath:           GetEnv("ENGINE_SOCKET_PATH", defaultEngineSocketPath),
		ListenAddr:                 GetEnv("LISTEN_ADDR", defaultListenAddr),
		RateLimitPerSecond:         GetEnvInt("RATE_LIMIT_PER_SECOND", 0),
		RateLimitBurst:             GetEnvInt("RATE_LIMIT_BURST", 20),
	}

	return cfg, nil
}

// GetEnv retrieves an environment variable with a fallback default.
func GetEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool retrieves a boolean environment variable. Accepts "1", "true",
// "yes" and "on" (case-insensitive) as true; any other set value is false,
// and an unset or blank key yields defaultValue.
func GetEnvBool(key string, defaultValue bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// GetEnvCSV splits a comma-separated environment variable into trimmed,
// non-empty entries.
func GetEnvCSV(key, defaultValue string) []string {
	raw := GetEnv(key, defaultValue)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetEnvInt retrieves an integer environment variable with a fallback default.
func GetEnvInt(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
