package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"instant-translator/internal/config"
	"instant-translator/internal/language"
)

// Config holds application settings
type Config struct {
	// Basic settings
	DefaultSourceLang string `json:"default_source_lang" yaml:"default_source_lang"`
	DefaultTargetLang string `json:"default_target_lang" yaml:"default_target_lang"`

	// Provider selection (argos)
	TranslationProvider string `json:"translation_provider" yaml:"translation_provider"`
	PythonPath          string `json:"python_path" yaml:"python_path"`

	// CacheCapacity is the number of concurrently resident engines.
	// Each one keeps a model loaded, so keep this small.
	CacheCapacity int `json:"cache_capacity" yaml:"cache_capacity"`

	// TranslateTimeoutSeconds bounds a single engine subprocess call.
	TranslateTimeoutSeconds int `json:"translate_timeout_seconds" yaml:"translate_timeout_seconds"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		DefaultSourceLang:       config.DefaultSourceLang,
		DefaultTargetLang:       config.DefaultTargetLang,
		TranslationProvider:     "argos",
		PythonPath:              "python3",
		CacheCapacity:           config.DefaultCacheCapacity,
		TranslateTimeoutSeconds: int(config.ExecTimeoutPython / time.Second),
		LogLevel:                "info",
	}
}

// Capacity returns the engine cache capacity, falling back to the default
// for values below 1.
func (c *Config) Capacity() int {
	if c.CacheCapacity < 1 {
		return config.DefaultCacheCapacity
	}
	return c.CacheCapacity
}

// TranslateTimeout returns the per-call engine timeout.
func (c *Config) TranslateTimeout() time.Duration {
	if c.TranslateTimeoutSeconds <= 0 {
		return config.ExecTimeoutPython
	}
	return time.Duration(c.TranslateTimeoutSeconds) * time.Second
}

// Validate checks the language codes and provider.
func (c *Config) Validate() error {
	for _, code := range []string{c.DefaultSourceLang, c.DefaultTargetLang} {
		if code == "" {
			continue
		}
		if !language.IsSupported(code) {
			return fmt.Errorf("unsupported language %q", code)
		}
	}
	if c.TranslationProvider != "" && c.TranslationProvider != "argos" {
		return fmt.Errorf("unknown translation provider %q", c.TranslationProvider)
	}
	return nil
}

func (c *Config) ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "instant-translator", "config.json")
}

// LoadConfig reads the config from the default location. A missing file
// yields the defaults.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(DefaultConfig().ConfigPath())
}

// LoadConfigFile reads a JSON or YAML (.yaml, .yml) config file over the
// defaults. A missing file yields the defaults.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Save() error {
	return c.SaveTo(c.ConfigPath())
}

// SaveTo writes the config as JSON to path.
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
