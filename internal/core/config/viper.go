package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*EngineConfig, error) {
	v := viper.New()

	// Defaults matching DefaultEngineConfig
	v.SetDefault("engine.host", "0.0.0.0")
	v.SetDefault("engine.port", 8080)
	v.SetDefault("engine.run_interval", "5m")
	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.action_timeout", "60s")
	v.SetDefault("engine.marketplace_url", "https://ads.shopee.co.id")

	// Bind environment variables with AP_ prefix
	v.SetEnvPrefix("AP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets are environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &EngineConfig{
		Host:           v.GetString("engine.host"),
		Port:           v.GetInt("engine.port"),
		RunInterval:    v.GetDuration("engine.run_interval"),
		Workers:        v.GetInt("engine.workers"),
		ActionTimeout:  v.GetDuration("engine.action_timeout"),
		MarketplaceURL: v.GetString("engine.marketplace_url"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive intervals/pool sizes.
func validateConfig(cfg *EngineConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RunInterval <= 0 {
		return fmt.Errorf("run_interval must be positive, got %v", cfg.RunInterval)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.ActionTimeout <= 0 {
		return fmt.Errorf("action_timeout must be positive, got %v", cfg.ActionTimeout)
	}
	if cfg.MarketplaceURL == "" {
		return fmt.Errorf("marketplace_url must not be empty")
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("hmac_secret") || v.IsSet("engine.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use AP_HMAC_SECRET environment variable)")
	}
	return nil
}
