package config

import (
	"fmt"
	"os"
)

// Config holds runtime configuration for the client and the companion server.
type Config struct {
	API     APIConfig
	Auth    AuthConfig
	Session SessionConfig
	Server  ServerConfig
	Metrics MetricsConfig
	Log     LogConfig
	// Timezone names the IANA zone used for kickoff labels; empty means local time.
	Timezone string
}

// ServerConfig controls the local companion service started by `pickem serve`.
type ServerConfig struct {
	Port         string
	PollInterval Duration
	// CORSOrigins lists browser origins allowed to call the service. Empty
	// disables CORS entirely.
	CORSOrigins []string
}

// LogConfig selects logger level and handler format.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
// When PICKEM_CONFIG_FILE points at a YAML file its values replace the built-in
// defaults; environment variables still win over both.
func Load() (Config, error) {
	var file fileConfig
	if path := os.Getenv(envConfigFile); path != "" {
		parsed, err := readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		file = parsed
	}
	return build(file), nil
}

func build(file fileConfig) Config {
	return Config{
		API:     loadAPI(file.API),
		Auth:    loadAuth(file.Auth),
		Session: loadSession(file.Session),
		Server: ServerConfig{
			Port:         envOrDefault(envPort, stringOr(file.Server.Port, defaultPort)),
			PollInterval: durationEnvOrDefault(envPollInterval, durationOr(file.Server.PollInterval, defaultPollInterval)),
			CORSOrigins:  listEnvOrDefault(envCORSOrigins, file.Server.CORSOrigins),
		},
		Metrics: loadMetrics(file.Metrics),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, stringOr(file.Log.Level, defaultLogLevel)),
			Format: envOrDefault(envLogFormat, stringOr(file.Log.Format, defaultLogFormat)),
		},
		Timezone: envOrDefault(envTimezone, file.Timezone),
	}
}
