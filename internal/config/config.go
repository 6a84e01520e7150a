package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything platen needs to reach and talk to the
// WebPrint service. Values resolve in order: built-in defaults, then
// the TOML config file, then PLATEN_* environment variables (a .env
// file in the working directory is honored).
type Config struct {
	BaseURL       string
	APIPrefix     string
	Timeout       time.Duration
	EnableLogging bool
	LogFile       string
	RegistryPath  string
}

const (
	defaultConfigPath   = "~/.config/platen/config.toml"
	defaultBaseURL      = "http://localhost:8080"
	defaultAPIPrefix    = "/api"
	defaultTimeout      = 30 * time.Second
	defaultLogFile      = "~/.local/share/platen/platen.log"
	defaultRegistryPath = "~/.local/share/platen/tasks.json"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the platen config, falling back to defaults
// when missing, then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:      defaultBaseURL,
		APIPrefix:    defaultAPIPrefix,
		Timeout:      defaultTimeout,
		LogFile:      defaultLogFile,
		RegistryPath: defaultRegistryPath,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var parsed struct {
		BaseURL       string `toml:"base_url"`
		APIPrefix     string `toml:"api_prefix"`
		TimeoutMS     int    `toml:"timeout_ms"`
		EnableLogging bool   `toml:"enable_logging"`
		LogFile       string `toml:"log_file"`
		RegistryPath  string `toml:"registry_path"`
	}
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(parsed.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(parsed.APIPrefix); v != "" {
		cfg.APIPrefix = v
	}
	if parsed.TimeoutMS > 0 {
		cfg.Timeout = time.Duration(parsed.TimeoutMS) * time.Millisecond
	}
	cfg.EnableLogging = parsed.EnableLogging
	if v := strings.TrimSpace(parsed.LogFile); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(parsed.RegistryPath); v != "" {
		cfg.RegistryPath = v
	}

	return applyEnv(cfg), nil
}

// ResolvedLogFile returns the log file path with ~ expanded.
func (c Config) ResolvedLogFile() string {
	return mustExpand(c.LogFile)
}

// ResolvedRegistryPath returns the registry file path with ~ expanded.
func (c Config) ResolvedRegistryPath() string {
	return mustExpand(c.RegistryPath)
}

// applyEnv layers PLATEN_* environment variables over cfg. A .env file
// in the working directory is loaded first; a missing one is fine.
func applyEnv(cfg Config) Config {
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("PLATEN_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PLATEN_API_PREFIX")); v != "" {
		cfg.APIPrefix = v
	}
	if v := strings.TrimSpace(os.Getenv("PLATEN_TIMEOUT_MS")); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("PLATEN_LOGGING")); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.EnableLogging = enabled
		}
	}
	if v := strings.TrimSpace(os.Getenv("PLATEN_LOG_FILE")); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv("PLATEN_REGISTRY_PATH")); v != "" {
		cfg.RegistryPath = v
	}
	return cfg
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
