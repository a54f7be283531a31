// Package metrics defines the Prometheus collectors exposed on /metrics.
// All collectors are registered at init time via promauto.
package metrics
