package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "pipestt", "config.toml"), nil
}

// Load reads the config file, falling back to defaults when none exists.
// The daemon runs fine without a config file, like the original deployment.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Debug("no config file, using defaults", "path", path)
		return DefaultConfig(), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	config := DefaultConfig()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	config.applyEnvOverrides()

	log.Debug("configuration loaded", "path", path)
	return config, nil
}

// Save writes the config to the default location, creating the directory
// if needed.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(configPath, cfg)
}

func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides fills credential fields the file leaves empty.
func (c *Config) applyEnvOverrides() {
	if c.Broker.Username == "" {
		c.Broker.Username = os.Getenv("MQTT_USERNAME")
	}
	if c.Broker.Password == "" {
		c.Broker.Password = os.Getenv("MQTT_PASSWORD")
	}
}

// ResolveRefineAPIKey returns the refiner API key from the config file or,
// failing that, the provider's conventional environment variable.
func (c *Config) ResolveRefineAPIKey() string {
	if c.Refine.APIKey != "" {
		return c.Refine.APIKey
	}
	switch c.Refine.Provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	}
	return ""
}
