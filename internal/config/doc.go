// Package config loads platen's configuration.
//
// Configuration lives in ~/.config/platen/config.toml:
//
//	base_url = "http://localhost:8080"
//	api_prefix = "/api"
//	timeout_ms = 30000
//	enable_logging = false
//	log_file = "~/.local/share/platen/platen.log"
//	registry_path = "~/.local/share/platen/tasks.json"
//
// Every value has a sensible default and a PLATEN_* environment
// override (PLATEN_BASE_URL, PLATEN_API_PREFIX, PLATEN_TIMEOUT_MS,
// PLATEN_LOGGING, PLATEN_LOG_FILE, PLATEN_REGISTRY_PATH). A .env file
// in the working directory is loaded before the overrides are read,
// which keeps per-project service URLs out of the shell profile.
//
// The loaded Config is plain data: it is passed explicitly into the
// client and app constructors and never mutated afterwards.
package config
