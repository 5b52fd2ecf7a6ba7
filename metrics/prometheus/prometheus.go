// Package prometheus exports memory engine metrics to Prometheus.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weave-logic-ai/vecmem/metrics"
)

var _ metrics.Collector = (*Collector)(nil)

// Collector implements metrics.Collector on top of Prometheus vectors.
type Collector struct {
	opLatency *prometheus.HistogramVec
	ops       *prometheus.CounterVec
	results   prometheus.Counter
	rebuilds  prometheus.Counter
	graphSize prometheus.Gauge
	bytes     *prometheus.CounterVec
	tierMoves *prometheus.CounterVec
}

// New creates a Collector and registers it with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vecmem_operation_latency_seconds",
			Help:    "Latency of memory engine operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vecmem_operations_total",
			Help: "Total memory engine operations by outcome",
		}, []string{"op", "status"}),
		results: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecmem_query_results_total",
			Help: "Total results returned by similarity queries",
		}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecmem_graph_rebuilds_total",
			Help: "Total approximate graph rebuilds",
		}),
		graphSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vecmem_graph_nodes",
			Help: "Number of nodes in the most recently built graph",
		}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vecmem_persist_bytes_total",
			Help: "Bytes written or read by persistence operations",
		}, []string{"op"}),
		tierMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vecmem_tier_moves_total",
			Help: "Vectors moved between temperature tiers",
		}, []string{"from", "to"}),
	}

	for _, col := range []prometheus.Collector{c.opLatency, c.ops, c.results, c.rebuilds, c.graphSize, c.bytes, c.tierMoves} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordInsert implements metrics.Collector.
func (c *Collector) RecordInsert(d time.Duration, err error) {
	c.opLatency.WithLabelValues("insert").Observe(d.Seconds())
	c.ops.WithLabelValues("insert", status(err)).Inc()
}

// RecordQuery implements metrics.Collector.
func (c *Collector) RecordQuery(_, results int, d time.Duration) {
	c.opLatency.WithLabelValues("query").Observe(d.Seconds())
	c.ops.WithLabelValues("query", "success").Inc()
	c.results.Add(float64(results))
}

// RecordDelete implements metrics.Collector.
func (c *Collector) RecordDelete(d time.Duration, found bool) {
	c.opLatency.WithLabelValues("delete").Observe(d.Seconds())
	s := "success"
	if !found {
		s = "not_found"
	}
	c.ops.WithLabelValues("delete", s).Inc()
}

// RecordRebuild implements metrics.Collector.
func (c *Collector) RecordRebuild(nodes int, d time.Duration) {
	c.opLatency.WithLabelValues("rebuild").Observe(d.Seconds())
	c.rebuilds.Inc()
	c.graphSize.Set(float64(nodes))
}

// RecordPersist implements metrics.Collector.
func (c *Collector) RecordPersist(op string, bytes int, d time.Duration, err error) {
	c.opLatency.WithLabelValues(op).Observe(d.Seconds())
	c.ops.WithLabelValues(op, status(err)).Inc()
	c.bytes.WithLabelValues(op).Add(float64(bytes))
}

// RecordTierMove implements metrics.Collector.
func (c *Collector) RecordTierMove(from, to string) {
	c.tierMoves.WithLabelValues(from, to).Inc()
}
