package config

import "time"

const (
	envConfigFile = "PICKEM_CONFIG_FILE"

	envAPIBaseURL       = "PICKEM_API_URL"
	envAPITimeout       = "PICKEM_API_TIMEOUT"
	envAPIRetryAttempts = "PICKEM_API_RETRY_ATTEMPTS"
	envAPIRetryBackoff  = "PICKEM_API_RETRY_BACKOFF"
	envGoogleClientID   = "PICKEM_GOOGLE_CLIENT_ID"
	envSessionPath      = "PICKEM_SESSION_FILE"
	envSessionPreserve  = "PICKEM_SESSION_PRESERVE_ON_NETWORK_ERROR"
	envPort             = "PORT"
	envPollInterval     = "POLL_INTERVAL"
	envCORSOrigins      = "PICKEM_CORS_ORIGINS"
	envMetricsPort      = "METRICS_PORT"
	envMetricsOn        = "METRICS_ENABLED"
	envOtelEndpoint     = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService      = "OTEL_SERVICE_NAME"
	envOtelInsecure     = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel         = "LOG_LEVEL"
	envLogFormat        = "LOG_FORMAT"
	envTimezone         = "PICKEM_TIMEZONE"

	defaultAPIBaseURL       = "http://localhost:8000"
	defaultAPITimeout       = 10 * Duration(time.Second)
	defaultAPIRetryAttempts = 3
	defaultAPIRetryBackoff  = 200 * Duration(time.Millisecond)
	defaultSessionFile      = "session.json"
	defaultSessionDir       = "pickem"
	defaultPort             = "4000"
	defaultPollInterval = Duration(time.Minute)
	defaultMetricsPort  = "9090"
	defaultServiceName  = "pickem-client"
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)
