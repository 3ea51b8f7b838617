package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".policy-chat"
	DefaultConfigFile = "config.yaml"
)

// Config represents the application configuration
type Config struct {
	// BackendURL is the base URL of the answering service.
	BackendURL string `yaml:"backend_url"`

	// CredentialsPath points at the file holding the bearer token issued
	// by the auth provider. Relative paths are resolved against the
	// config directory.
	CredentialsPath string `yaml:"credentials_path"`

	// DataDir holds the local session/message store. Relative paths are
	// resolved against the config directory.
	DataDir string `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		BackendURL:      "http://127.0.0.1:8090",
		CredentialsPath: "credentials",
		DataDir:         "db",
	}
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, DefaultConfigDir), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// Load loads the configuration from file, creating default if not exists.
// A .env file in the working directory and environment variables override
// file values.
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	cfg := DefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create default. If save fails the
		// app still works with defaults.
		_ = Save(cfg)
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.resolvePaths(configDir)

	return cfg, nil
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url must not be empty")
	}

	if c.CredentialsPath == "" {
		return fmt.Errorf("credentials_path must not be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}

	return nil
}

// applyEnv overlays environment variables onto the config. A .env file in
// the working directory is loaded first when present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("POLICY_CHAT_BACKEND_URL"); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv("POLICY_CHAT_CREDENTIALS"); v != "" {
		c.CredentialsPath = v
	}
	if v := os.Getenv("POLICY_CHAT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

func (c *Config) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.CredentialsPath) {
		c.CredentialsPath = filepath.Join(configDir, c.CredentialsPath)
	}
	if !filepath.IsAbs(c.DataDir) {
		c.DataDir = filepath.Join(configDir, c.DataDir)
	}
}
