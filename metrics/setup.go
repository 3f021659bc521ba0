package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing training metrics.
//
// Each trainer process maintains its own isolated registry to prevent metric
// name collisions when several runs share a host.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	Registry *prometheus.Registry

	// Core built-in training metrics
	stepsTotal   *prometheus.CounterVec
	lossValue    *prometheus.GaugeVec
	stepDuration *prometheus.HistogramVec
	datasetSize  *prometheus.GaugeVec
	infraOps     *prometheus.CounterVec
}

// NewMetrics initializes and returns a new Metrics instance.
// It sets up a dedicated Prometheus registry, registers the built-in training
// metrics (and optionally the default system collectors), wraps all metrics
// with a constant `service` label, and creates an HTTP server exposing the
// /metrics endpoint.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:                 ":9090",
//	    ServiceName:             "simcl-trainer",
//	    EnableDefaultCollectors: true,
//	})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// All metrics emitted by this process automatically carry the label:
	//   service="<cfg.ServiceName>"
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.stepsTotal = createCounterVec("train_steps_total", "Total number of completed training steps", []string{"status"})
	m.lossValue = createGaugeVec("train_loss", "Most recent loss value per objective", []string{"objective"})
	m.stepDuration = createHistogramVec("train_step_duration_seconds", "Duration of a single training step in seconds", []string{"phase"}, prometheus.DefBuckets)
	m.datasetSize = createGaugeVec("dataset_sentences", "Number of sentences in the loaded corpus", []string{"split"})
	m.infraOps = createCounterVec("infra_operations_total", "Operations performed against infrastructure backends", []string{"component", "operation", "status"})

	wrappedRegistry.MustRegister(
		m.stepsTotal,
		m.lossValue,
		m.stepDuration,
		m.datasetSize,
		m.infraOps,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}

	return m
}
