// Package config resolves client configuration: built-in defaults,
// then an optional TOML config file, then environment overrides. The
// API base address is the only setting a deployment must supply.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the resolved client configuration.
type Config struct {
	// APIURL is the base address of the document platform API.
	APIURL string `toml:"api_url"`

	// DataDir holds durable local state (the session file). Empty
	// means the platform-appropriate user config directory.
	DataDir string `toml:"data_dir"`

	// RequestTimeoutSeconds bounds individual HTTP requests. Zero
	// keeps the client default.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

const appDirName = "docpilot"

// Load resolves the configuration. The config file is looked up at
// DOCPILOT_CONFIG, falling back to config.toml in the user config
// directory; a missing file is not an error.
func Load() (*Config, error) {
	cfg := &Config{
		APIURL: "http://localhost:8000",
	}

	path := configPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	overrideByEnv(cfg)

	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate user config directory: %w", err)
		}
		cfg.DataDir = filepath.Join(base, appDirName)
	}
	return cfg, nil
}

func configPath() string {
	if path := os.Getenv("DOCPILOT_CONFIG"); path != "" {
		return path
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, appDirName, "config.toml")
}

func overrideByEnv(cfg *Config) {
	cfg.APIURL = getEnv("DOCPILOT_API_URL", cfg.APIURL)
	cfg.DataDir = getEnv("DOCPILOT_DATA_DIR", cfg.DataDir)
	cfg.RequestTimeoutSeconds = getEnvAsInt("DOCPILOT_REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeoutSeconds)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
