// Package infra holds the adapters behind core interfaces: trip and user
// storage, metrics sinks, plan publishers (MQTT, Kafka, JSONL, S3), logging
// and Sentry monitoring.
package infra
