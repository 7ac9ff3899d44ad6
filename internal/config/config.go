package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all multichat configuration.
type Config struct {
	Name string `yaml:"name"`

	LLM     LLMConfig     `yaml:"llm"`
	UI      UIConfig      `yaml:"ui"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`

	// SeedAPIKey comes from GEMINI_API_KEY and is never written back.
	SeedAPIKey string `yaml:"-"`
}

// StorageConfig configures the local key store and attachment limits.
type StorageConfig struct {
	// KeyFile is the local-storage file. Relative paths resolve against the config dir.
	KeyFile string `yaml:"key_file"`

	// MaxImageBytes caps attached image size.
	MaxImageBytes int64 `yaml:"max_image_bytes"`
}

// DefaultMaxImageBytes is the inline-data ceiling for an attached image.
const DefaultMaxImageBytes = 20 << 20

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "multichat",

		LLM: LLMConfig{
			Provider: "gemini",
			Model:    DefaultModel,
			Timeout:  "120s",
		},

		UI: DefaultUIConfig(),

		Storage: StorageConfig{
			KeyFile:       "storage.json",
			MaxImageBytes: DefaultMaxImageBytes,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dir returns the directory where config and storage live.
// MULTICHAT_HOME wins over the user config dir.
func Dir() (string, error) {
	if home := os.Getenv("MULTICHAT_HOME"); home != "" {
		return home, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "multichat"), nil
}

// DefaultPath returns <Dir>/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from a YAML file.
// A missing file yields defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.SeedAPIKey = key
	}
	if model := os.Getenv("MULTICHAT_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if theme := os.Getenv("MULTICHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if v := os.Getenv("MULTICHAT_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !slices.Contains(ValidProviders, c.LLM.Provider) {
		return fmt.Errorf("invalid provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if c.UI.Theme != "" && !slices.Contains(ValidThemes, c.UI.Theme) {
		return fmt.Errorf("invalid theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}
	if c.LLM.Timeout != "" {
		if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
			return fmt.Errorf("invalid llm.timeout %q: %w", c.LLM.Timeout, err)
		}
	}
	if c.Storage.MaxImageBytes < 0 {
		return fmt.Errorf("storage.max_image_bytes must not be negative")
	}
	return nil
}

// KeyFilePath resolves Storage.KeyFile against dir.
func (c *Config) KeyFilePath(dir string) string {
	name := c.Storage.KeyFile
	if name == "" {
		name = "storage.json"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// ImageLimit returns the effective attachment size cap.
func (c *Config) ImageLimit() int64 {
	if c.Storage.MaxImageBytes <= 0 {
		return DefaultMaxImageBytes
	}
	return c.Storage.MaxImageBytes
}
