// Package events publishes training telemetry to Kafka: one event per
// optimization step plus run lifecycle events. Consumers build dashboards and
// alerting on these without touching the trainer.
package events
