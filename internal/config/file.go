package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	API     fileAPI     `yaml:"api"`
	Auth    fileAuth    `yaml:"auth"`
	Session fileSession `yaml:"session"`
	Server  fileServer  `yaml:"server"`
	Metrics fileMetrics `yaml:"metrics"`
	Log     fileLog     `yaml:"log"`

	Timezone string `yaml:"timezone"`
}

type fileAPI struct {
	BaseURL       string `yaml:"base_url"`
	Timeout       string `yaml:"timeout"`
	RetryAttempts int    `yaml:"retry_attempts"`
	RetryBackoff  string `yaml:"retry_backoff"`
}

type fileAuth struct {
	GoogleClientID string `yaml:"google_client_id"`
}

type fileSession struct {
	Path                   string `yaml:"path"`
	PreserveOnNetworkError *bool  `yaml:"preserve_on_network_error"`
}

type fileServer struct {
	Port         string `yaml:"port"`
	PollInterval string   `yaml:"poll_interval"`
	CORSOrigins  []string `yaml:"cors_origins"`
}

type fileMetrics struct {
	Enabled      *bool  `yaml:"enabled"`
	Port         string `yaml:"port"`
	OtlpEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
	OtlpInsecure *bool  `yaml:"otlp_insecure"`
}

type fileLog struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func readFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func stringOr(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}

func intOr(val, fallback int) int {
	if val > 0 {
		return val
	}
	return fallback
}

func boolOr(val *bool, fallback bool) bool {
	if val != nil {
		return *val
	}
	return fallback
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
