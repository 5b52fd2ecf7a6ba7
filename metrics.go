package vecmem

import "github.com/weave-logic-ai/vecmem/metrics"

// MetricsCollector receives operational metrics. See package metrics for the
// built-in collectors and metrics/prometheus for a Prometheus exporter.
type MetricsCollector = metrics.Collector

// BasicMetricsCollector is an in-memory collector backed by atomic counters.
type BasicMetricsCollector = metrics.BasicCollector

// MetricsStats is a snapshot of a BasicMetricsCollector.
type MetricsStats = metrics.Stats
