package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v, want nil", err)
	}

	want := DefaultEngineConfig()
	if cfg.Host != want.Host || cfg.Port != want.Port {
		t.Errorf("listen = %s:%d, want %s:%d", cfg.Host, cfg.Port, want.Host, want.Port)
	}
	if cfg.RunInterval != want.RunInterval || cfg.ActionTimeout != want.ActionTimeout {
		t.Errorf("intervals = %v/%v, want %v/%v",
			cfg.RunInterval, cfg.ActionTimeout, want.RunInterval, want.ActionTimeout)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	configContent := `engine:
  port: 9090
  run_interval: "10m"
  workers: 8
`
	if _, err := tmpfile.Write([]byte(configContent)); err != nil {
		t.Fatal(err)
	}
	tmpfile.Close()

	cfg, err := LoadConfig(tmpfile.Name())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.RunInterval != 10*time.Minute {
		t.Errorf("RunInterval = %v, want 10m", cfg.RunInterval)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	// Unset keys keep their defaults.
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %s, want default", cfg.Host)
	}
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	os.Setenv("AP_ENGINE_PORT", "8081")
	defer os.Unsetenv("AP_ENGINE_PORT")

	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte("engine:\n  port: 9090\n")); err != nil {
		t.Fatal(err)
	}
	tmpfile.Close()

	cfg, err := LoadConfig(tmpfile.Name())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("Port = %d, want 8081 (environment over config file)", cfg.Port)
	}
}

func TestLoadConfig_RejectsSecretsInFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	configContent := `engine:
  port: 8080
  hmac_secret: "should_be_rejected"
`
	if _, err := tmpfile.Write([]byte(configContent)); err != nil {
		t.Fatal(err)
	}
	tmpfile.Close()

	if _, err := LoadConfig(tmpfile.Name()); err == nil {
		t.Fatal("expected error for secret in config file")
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid_port", "engine:\n  port: 70000\n"},
		{"zero_workers", "engine:\n  workers: 0\n"},
		{"negative_interval", "engine:\n  run_interval: \"-5m\"\n"},
		{"empty_marketplace_url", "engine:\n  marketplace_url: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "config-*.yaml")
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(tmpfile.Name())

			if _, err := tmpfile.Write([]byte(tt.content)); err != nil {
				t.Fatal(err)
			}
			tmpfile.Close()

			if _, err := LoadConfig(tmpfile.Name()); err == nil {
				t.Errorf("LoadConfig() error = nil, want validation failure")
			}
		})
	}
}
