package config

// OtelConfig holds OpenTelemetry trace export configuration.
//
// An empty Endpoint disables trace export entirely; the application then
// runs with a no-op tracer provider.
type OtelConfig struct {
	// Endpoint is the OTLP/HTTP collector endpoint (e.g. localhost:4318).
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// ServiceName is the service name attached to exported spans.
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	// Environment is the deployment environment tag.
	Environment string `mapstructure:"environment" json:"environment"`
}

// Enabled reports whether trace export is configured.
func (o OtelConfig) Enabled() bool {
	return o.Endpoint != ""
}
