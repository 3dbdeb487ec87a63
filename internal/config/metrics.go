package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool   `env:"METRICS_ENABLED"`
	Port         string `env:"METRICS_PORT"`
	OtlpEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME"`
	OtlpInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE"`
}

func defaultMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:      defaultMetricsEnabled,
		Port:         defaultMetricsPort,
		ServiceName:  defaultServiceName,
		OtlpInsecure: defaultOtlpInsecure,
	}
}
