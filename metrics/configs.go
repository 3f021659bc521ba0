package metrics

import "os"

// Config controls the Prometheus metrics endpoint.
type Config struct {
	// Address is the listen address of the /metrics HTTP server, e.g. ":9090".
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// ServiceName is applied as a constant `service` label on every metric.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`

	// EnableDefaultCollectors registers the Go runtime, process and build
	// info collectors in addition to the training metrics.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_DEFAULT_COLLECTORS"`
}

// NewConfig reads the metrics configuration from environment variables.
func NewConfig() Config {
	addr := os.Getenv("METRICS_ADDRESS")
	if addr == "" {
		addr = ":9090"
	}

	service := os.Getenv("METRICS_SERVICE_NAME")
	if service == "" {
		service = "simcl-trainer"
	}

	return Config{
		Address:                 addr,
		ServiceName:             service,
		EnableDefaultCollectors: os.Getenv("METRICS_DEFAULT_COLLECTORS") != "false",
	}
}
