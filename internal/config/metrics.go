package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

func loadMetrics(file fileMetrics) MetricsConfig {
	return MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, boolOr(file.Enabled, true)),
		Port:         envOrDefault(envMetricsPort, stringOr(file.Port, defaultMetricsPort)),
		OtlpEndpoint: envOrDefault(envOtelEndpoint, file.OtlpEndpoint),
		ServiceName:  envOrDefault(envOtelService, stringOr(file.ServiceName, defaultServiceName)),
		OtlpInsecure: boolEnvOrDefault(envOtelInsecure, boolOr(file.OtlpInsecure, true)),
	}
}
