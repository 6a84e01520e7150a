package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearPlatenEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PLATEN_BASE_URL", "PLATEN_API_PREFIX", "PLATEN_TIMEOUT_MS",
		"PLATEN_LOGGING", "PLATEN_LOG_FILE", "PLATEN_REGISTRY_PATH",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearPlatenEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, defaultBaseURL)
	}
	if cfg.APIPrefix != defaultAPIPrefix {
		t.Fatalf("APIPrefix = %q, want %q", cfg.APIPrefix, defaultAPIPrefix)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("Timeout = %v, want %v", cfg.Timeout, defaultTimeout)
	}
	if cfg.EnableLogging {
		t.Fatal("EnableLogging = true, want false by default")
	}
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	clearPlatenEnv(t)
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
base_url = "http://print.example.com:9000"
api_prefix = "/v2/api"
timeout_ms = 5000
enable_logging = true
registry_path = "/var/lib/platen/tasks.json"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "http://print.example.com:9000" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.APIPrefix != "/v2/api" {
		t.Fatalf("APIPrefix = %q", cfg.APIPrefix)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if !cfg.EnableLogging {
		t.Fatal("EnableLogging = false, want true")
	}
	if cfg.ResolvedRegistryPath() != "/var/lib/platen/tasks.json" {
		t.Fatalf("RegistryPath = %q", cfg.ResolvedRegistryPath())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearPlatenEnv(t)
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("base_url = \"http://from-file:8080\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("PLATEN_BASE_URL", "http://from-env:8081")
	t.Setenv("PLATEN_TIMEOUT_MS", "2500")
	t.Setenv("PLATEN_LOGGING", "true")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "http://from-env:8081" {
		t.Fatalf("BaseURL = %q, want env override", cfg.BaseURL)
	}
	if cfg.Timeout != 2500*time.Millisecond {
		t.Fatalf("Timeout = %v, want 2.5s", cfg.Timeout)
	}
	if !cfg.EnableLogging {
		t.Fatal("EnableLogging = false, want env override true")
	}
}

func TestLoad_InvalidEnvValuesIgnored(t *testing.T) {
	clearPlatenEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PLATEN_TIMEOUT_MS", "not-a-number")
	t.Setenv("PLATEN_LOGGING", "maybe")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("Timeout = %v, want default on bad env", cfg.Timeout)
	}
	if cfg.EnableLogging {
		t.Fatal("EnableLogging = true, want default on bad env")
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	clearPlatenEnv(t)
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("base_url = {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(cfgPath); err == nil {
		t.Fatal("Load = nil error, want parse failure")
	}
}

func TestResolvedPathsExpandHome(t *testing.T) {
	clearPlatenEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := filepath.Join(home, ".local", "share", "platen", "tasks.json")
	if got := cfg.ResolvedRegistryPath(); got != want {
		t.Fatalf("ResolvedRegistryPath = %q, want %q", got, want)
	}
}
