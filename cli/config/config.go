// Package config handles CLI configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in defaults, used when neither a flag nor the config file sets a value.
const (
	DefaultProvider    = "openai"
	DefaultModel       = "gpt-4o"
	DefaultMaxTokens   = 1280
	DefaultCodeLang    = "python"
	DefaultMaxImageDim = 1024
	DefaultServeAddr   = ":8501"
)

// Config represents the CLI configuration.
type Config struct {
	DefaultProvider string                    `yaml:"default_provider"`
	DefaultModel    string                    `yaml:"default_model"`
	Providers       map[string]ProviderConfig `yaml:"providers"`
	Build           BuildConfig               `yaml:"build"`
	Serve           ServeConfig               `yaml:"serve"`
}

// ProviderConfig holds configuration for a specific provider.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	// EnvFile is an optional .env file consulted for the API key.
	EnvFile string `yaml:"env_file,omitempty"`
	// Organization is sent with every request when set.
	Organization string `yaml:"organization,omitempty"`
	// Timeout bounds non-streaming requests such as 'appforge check'.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// BuildConfig holds defaults for app builds.
type BuildConfig struct {
	MaxTokens int    `yaml:"max_tokens"`
	CodeLang  string `yaml:"code_lang"`
	// MaxImageDim bounds the longer side of uploaded images. A pointer so
	// that an explicit 0 (no scaling) differs from unset.
	MaxImageDim *int `yaml:"max_image_dim"`
}

// ServeConfig holds defaults for the web front-end.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfigPath returns the default configuration file path for the current platform.
// - macOS/Linux: ~/.appforge/config.yaml
// - Windows: %USERPROFILE%\.appforge\config.yaml
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Dir returns the appforge state directory, or "." when no home is known.
func Dir() string {
	var homeDir string
	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}

	if homeDir == "" {
		return "."
	}
	return filepath.Join(homeDir, ".appforge")
}

// Default returns a config holding the built-in defaults.
func Default() *Config {
	maxDim := DefaultMaxImageDim
	return &Config{
		DefaultProvider: DefaultProvider,
		DefaultModel:    DefaultModel,
		Providers:       make(map[string]ProviderConfig),
		Build: BuildConfig{
			MaxTokens:   DefaultMaxTokens,
			CodeLang:    DefaultCodeLang,
			MaxImageDim: &maxDim,
		},
		Serve: ServeConfig{Addr: DefaultServeAddr},
	}
}

// LoadConfig loads configuration from the specified path.
// If the file doesn't exist, returns the defaults without error.
// Fields missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.DefaultProvider == "" {
		c.DefaultProvider = def.DefaultProvider
	}
	if c.DefaultModel == "" {
		c.DefaultModel = def.DefaultModel
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	if c.Build.MaxTokens <= 0 {
		c.Build.MaxTokens = def.Build.MaxTokens
	}
	if c.Build.CodeLang == "" {
		c.Build.CodeLang = def.Build.CodeLang
	}
	if c.Build.MaxImageDim == nil {
		c.Build.MaxImageDim = def.Build.MaxImageDim
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = def.Serve.Addr
	}
}

// MaxImageDim returns the configured image bound.
func (c *Config) MaxImageDim() int {
	if c.Build.MaxImageDim == nil {
		return DefaultMaxImageDim
	}
	return *c.Build.MaxImageDim
}

// GetProvider returns the provider config for the given ID.
// Returns nil if the provider is not configured.
func (c *Config) GetProvider(id string) *ProviderConfig {
	if c == nil || c.Providers == nil {
		return nil
	}
	if pc, ok := c.Providers[id]; ok {
		return &pc
	}
	return nil
}
