// Package config resolves runtime settings from defaults, an optional TOML
// file and WBS_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/wbs/internal/backend"
	"github.com/spf13/viper"
)

// Config holds everything cmd/wbs needs to wire the application.
type Config struct {
	DBPath      string
	PresetsPath string
	LogEnabled  bool
	Backend     backend.Config
	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string
}

// Load reads configuration for the current user. home is used to derive
// default paths; pass "" to use os.UserHomeDir.
func Load(home string) (*Config, error) {
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		home = h
	}
	return load(viper.New(), home)
}

func load(v *viper.Viper, home string) (*Config, error) {
	base := filepath.Join(home, ".wbs")
	def := backend.DefaultConfig()

	v.SetDefault("db", filepath.Join(base, "wbs.db"))
	v.SetDefault("presets", filepath.Join(base, "presets.toml"))
	v.SetDefault("log.enabled", false)
	v.SetDefault("api.url", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout_ms", def.TimeoutMs)
	v.SetDefault("api.max_retries", def.MaxRetries)
	v.SetDefault("api.retry_delay_ms", def.RetryDelay.Milliseconds())
	v.SetDefault("api.cache_ttl_sec", int(def.CacheTTL.Seconds()))

	bindings := map[string]string{
		"db":                "WBS_DB",
		"presets":           "WBS_PRESETS",
		"log.enabled":       "WBS_LOG",
		"api.url":           "WBS_API_URL",
		"api.token":         "WBS_API_TOKEN",
		"api.timeout_ms":    "WBS_API_TIMEOUT_MS",
		"api.max_retries":   "WBS_API_MAX_RETRIES",
		"api.cache_ttl_sec": "WBS_CACHE_TTL_SEC",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	file := os.Getenv("WBS_CONFIG")
	if file == "" {
		file = filepath.Join(base, "config.toml")
	}
	v.SetConfigFile(file)
	v.SetConfigType("toml")

	var cfgFile string
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
	} else {
		cfgFile = v.ConfigFileUsed()
	}

	cfg := &Config{
		DBPath:      v.GetString("db"),
		PresetsPath: v.GetString("presets"),
		LogEnabled:  v.GetBool("log.enabled"),
		ConfigFile:  cfgFile,
		Backend: backend.Config{
			BaseURL:    v.GetString("api.url"),
			Token:      v.GetString("api.token"),
			TimeoutMs:  v.GetInt("api.timeout_ms"),
			MaxRetries: v.GetInt("api.max_retries"),
			RetryDelay: time.Duration(v.GetInt("api.retry_delay_ms")) * time.Millisecond,
			CacheTTL:   time.Duration(v.GetInt("api.cache_ttl_sec")) * time.Second,
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("db path must not be empty")
	case c.Backend.TimeoutMs <= 0:
		return fmt.Errorf("api.timeout_ms must be positive, got %d", c.Backend.TimeoutMs)
	case c.Backend.MaxRetries < 0:
		return fmt.Errorf("api.max_retries must not be negative, got %d", c.Backend.MaxRetries)
	}
	return nil
}
