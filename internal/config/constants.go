package config

const (
	envPort          = "PORT"
	envLogLevel      = "LOG_LEVEL"
	envLogFormat     = "LOG_FORMAT"
	envBackend       = "BACKEND"
	envMetricsPort   = "METRICS_PORT"
	envMetricsOn     = "METRICS_ENABLED"
	envOtelEndpoint  = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelTraces    = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
	envOtelService   = "OTEL_SERVICE_NAME"
	envOtelInsecure  = "OTEL_EXPORTER_OTLP_INSECURE"
	envTracingOn     = "TRACING_ENABLED"
	envShutdownGrace = "SHUTDOWN_TIMEOUT"

	defaultPort        = "4000"
	defaultLogLevel    = "info"
	defaultLogFormat   = "json"
	defaultMetricsPort = "9090"
	defaultServiceName = "games-list-service"
)

// Backends selectable through BACKEND.
const (
	BackendMemory     = "memory"
	BackendSharePoint = "sharepoint"
)
