package config

import "time"

const (
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	defaultConsoleFormat   = "text"
	defaultMetricsEnabled  = true
	defaultMetricsPort     = "9090"
	defaultServiceName     = "scoreboard-service"
	defaultOtlpInsecure    = true
	defaultRevokeRetries   = 3
	defaultReportEnabled   = true
	defaultReportInterval  = time.Minute
	defaultShutdownTimeout = 10 * time.Second
)
