package config

import "testing"

func TestLoad_RequiresTenantName(t *testing.T) {
	t.Setenv("TENANT_NAME", "")
	t.Setenv("OWNER_LABEL_VALUE", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want error when tenant identity is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TENANT_NAME", "acme")
	t.Setenv("NAME_PREFIX", "")
	t.Setenv("ALLOWED_REGULAR_VOLUMES_DRIVERS", "")
	t.Setenv("ALLOWED_VOLUME_TYPES", "")
	t.Setenv("ALLOW_PORT_EXPOSE", "")
	t.Setenv("SERVICE_ALLOW_LISTED_NETWORKS", "")
	t.Setenv("ONLY_KNOWN_REGISTRIES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TenantLabelValue != "acme" {
		t.Fatalf("TenantLabelValue = %q, want %q", cfg.TenantLabelValue, "acme")
	}
	if cfg.NamePrefix != "acme" {
		t.Fatalf("NamePrefix = %q, want %q (default to tenant value)", cfg.NamePrefix, "acme")
	}
	if _, ok := cfg.AllowedVolumeDrivers["local"]; !ok {
		t.Fatalf("AllowedVolumeDrivers = %v, want to contain %q", cfg.AllowedVolumeDrivers, "local")
	}
	for _, mt := range []string{"bind", "volume", "tmpfs", "npipe", "cluster"} {
		if _, ok := cfg.AllowedMountTypes[mt]; !ok {
			t.Fatalf("AllowedMountTypes missing %q", mt)
		}
	}
	if cfg.AllowPortExpose {
		t.Fatal("AllowPortExpose = true, want false by default")
	}
	if cfg.OnlyKnownRegistries {
		t.Fatal("OnlyKnownRegistries = true, want false by default")
	}
}

func TestLoad_LegacyOwnerLabelValue(t *testing.T) {
	t.Setenv("TENANT_NAME", "")
	t.Setenv("OWNER_LABEL_VALUE", "legacy-tenant")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TenantLabelValue != "legacy-tenant" {
		t.Fatalf("TenantLabelValue = %q, want %q", cfg.TenantLabelValue, "legacy-tenant")
	}
}

func TestGetEnvCSV(t *testing.T) {
	t.Setenv("SWARMGATE_TEST_CSV", " a, b ,,c")
	got := GetEnvCSV("SWARMGATE_TEST_CSV", "")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("GetEnvCSV() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetEnvCSV()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGetEnvBool(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"garbage", false},
	}
	for _, tc := range cases {
		t.Setenv("SWARMGATE_TEST_BOOL", tc.value)
		if got := GetEnvBool("SWARMGATE_TEST_BOOL", false); got != tc.want {
			t.Fatalf("GetEnvBool(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
