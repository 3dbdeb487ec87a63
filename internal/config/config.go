package config

import "time"

// Config holds runtime configuration for the scoreboard service.
type Config struct {
	LogLevel        string        `env:"LOG_LEVEL"`
	LogFormat       string        `env:"LOG_FORMAT"`
	ConsoleFormat   string        `env:"CONSOLE_FORMAT"`
	RevokeRetries   int           `env:"REVOKE_RETRIES"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	Report          ReportConfig
	Metrics         MetricsConfig
}

// ReportConfig controls the periodic leaderboard reporter.
type ReportConfig struct {
	Enabled  bool          `env:"REPORT_ENABLED"`
	Interval time.Duration `env:"REPORT_INTERVAL"`
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
		ConsoleFormat:   defaultConsoleFormat,
		RevokeRetries:   defaultRevokeRetries,
		ShutdownTimeout: defaultShutdownTimeout,
		Report: ReportConfig{
			Enabled:  defaultReportEnabled,
			Interval: defaultReportInterval,
		},
		Metrics: defaultMetrics(),
	}
}

// Load reads configuration from environment variables with sensible defaults.
// A malformed variable yields the defaults together with the parse error so
// callers can log it and keep running.
func Load() (Config, error) {
	return load(nil)
}

func load(environ map[string]string) (Config, error) {
	cfg := Default()
	if err := parseEnv(&cfg, environ); err != nil {
		return Default(), err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	switch c.ConsoleFormat {
	case "text", "json":
	default:
		c.ConsoleFormat = defaultConsoleFormat
	}
	if c.RevokeRetries < 0 {
		c.RevokeRetries = defaultRevokeRetries
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Report.Interval <= 0 {
		c.Report.Interval = defaultReportInterval
	}
	if c.Metrics.Port == "" {
		c.Metrics.Port = defaultMetricsPort
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = defaultServiceName
	}
}
