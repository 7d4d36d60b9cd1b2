package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration, loaded from YAML with env-var
// overrides for deployment knobs. The Discord token only ever comes from
// the environment.
type Config struct {
	Discord struct {
		GuildID string `yaml:"guild_id"`
	} `yaml:"discord"`
	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`
	Gateway struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"gateway"`
	LogLevel string `yaml:"log_level"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.Gateway.Addr = ":8090"
	cfg.LogLevel = "info"
	return cfg
}

// loadConfig reads the YAML config at path. A missing file is fine; the
// defaults plus env overrides carry a minimal deployment.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnvOverrides(cfg), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return applyEnvOverrides(cfg), nil
}

func applyEnvOverrides(cfg *Config) *Config {
	cfg.Discord.GuildID = getEnv("GUILD_ID", cfg.Discord.GuildID)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.Gateway.Addr = getEnv("GATEWAY_ADDR", cfg.Gateway.Addr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
