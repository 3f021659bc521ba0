package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementSteps increments the training step counter with a given status label.
// Example: metrics.IncrementSteps("ok")
func (m *Metrics) IncrementSteps(status string) {
	m.stepsTotal.WithLabelValues(status).Inc()
}

// ObserveLoss sets the loss gauge for a given objective ("sentence", "token", "total").
func (m *Metrics) ObserveLoss(value float64, objective string) {
	m.lossValue.WithLabelValues(objective).Set(value)
}

// RecordStepDuration records the duration (in seconds) of a training phase.
// Example: defer metrics.RecordStepDuration(time.Now(), "forward")
func (m *Metrics) RecordStepDuration(start time.Time, phase string) {
	duration := time.Since(start).Seconds()
	m.stepDuration.WithLabelValues(phase).Observe(duration)
}

// IncrementInfraOperations counts one infrastructure backend operation.
// Example: metrics.IncrementInfraOperations("qdrant", "upsert", "ok")
func (m *Metrics) IncrementInfraOperations(component, operation, status string) {
	m.infraOps.WithLabelValues(component, operation, status).Inc()
}

// SetDatasetSize sets the corpus size gauge for a given split.
func (m *Metrics) SetDatasetSize(size int, split string) {
	m.datasetSize.WithLabelValues(split).Set(float64(size))
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(name, help, labels)
	m.Registry.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(name, help, labels, buckets)
	m.Registry.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(name, help, labels)
	m.Registry.MustRegister(gauge)
	return gauge
}

// createCounterVec defines a new CounterVec with standard options.
// Used internally by NewMetrics to maintain consistency.
func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

// createGaugeVec defines a new GaugeVec for resource and state tracking.
func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
