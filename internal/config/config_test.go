package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"Empty backend URL", func(c *Config) { c.BackendURL = "" }, true},
		{"Empty credentials path", func(c *Config) { c.CredentialsPath = "" }, true},
		{"Empty data dir", func(c *Config) { c.DataDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolvePaths(t *testing.T) {
	cfg := &Config{
		BackendURL:      "http://127.0.0.1:8090",
		CredentialsPath: "credentials",
		DataDir:         "/var/lib/policy-chat/db",
	}
	cfg.resolvePaths("/home/dev/.policy-chat")

	if cfg.CredentialsPath != filepath.Join("/home/dev/.policy-chat", "credentials") {
		t.Errorf("relative path not resolved: %q", cfg.CredentialsPath)
	}
	if cfg.DataDir != "/var/lib/policy-chat/db" {
		t.Errorf("absolute path must be left alone: %q", cfg.DataDir)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("POLICY_CHAT_BACKEND_URL", "https://assist.example.com")
	t.Setenv("POLICY_CHAT_DATA_DIR", "/tmp/pc-db")

	cfg := DefaultConfig()
	cfg.applyEnv()

	if cfg.BackendURL != "https://assist.example.com" {
		t.Errorf("backend URL override not applied: %q", cfg.BackendURL)
	}
	if cfg.DataDir != "/tmp/pc-db" {
		t.Errorf("data dir override not applied: %q", cfg.DataDir)
	}
	if cfg.CredentialsPath != "credentials" {
		t.Errorf("unset variable must not change the value: %q", cfg.CredentialsPath)
	}
}
