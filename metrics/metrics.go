// Package metrics defines the operational metrics hooks of the memory engine.
//
// Implement Collector to integrate with a monitoring system. The
// metrics/prometheus package provides a Prometheus implementation.
package metrics

import (
	"sync/atomic"
	"time"
)

// Collector receives operational metrics from the indexes and stores.
//
// Implementations must be cheap: they are called inline on every operation.
type Collector interface {
	// RecordInsert is called after each insert or upsert.
	RecordInsert(duration time.Duration, err error)

	// RecordQuery is called after each similarity query.
	// k is the number of neighbors requested, results the number returned.
	RecordQuery(k, results int, duration time.Duration)

	// RecordDelete is called after each delete. found reports whether the id existed.
	RecordDelete(duration time.Duration, found bool)

	// RecordRebuild is called after the approximate graph is (re)built.
	RecordRebuild(nodes int, duration time.Duration)

	// RecordPersist is called after a file is written ("save") or read ("load").
	RecordPersist(op string, bytes int, duration time.Duration, err error)

	// RecordTierMove is called when a stored vector changes temperature tier.
	RecordTierMove(from, to string)
}

// NoopCollector is a no-op implementation of Collector.
type NoopCollector struct{}

func (NoopCollector) RecordInsert(time.Duration, error)               {}
func (NoopCollector) RecordQuery(int, int, time.Duration)             {}
func (NoopCollector) RecordDelete(time.Duration, bool)                {}
func (NoopCollector) RecordRebuild(int, time.Duration)                {}
func (NoopCollector) RecordPersist(string, int, time.Duration, error) {}
func (NoopCollector) RecordTierMove(string, string)                   {}

// BasicCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicCollector struct {
	InsertCount     atomic.Int64
	InsertErrors    atomic.Int64
	QueryCount      atomic.Int64
	QueryResults    atomic.Int64
	QueryTotalNanos atomic.Int64
	DeleteCount     atomic.Int64
	DeleteMisses    atomic.Int64
	RebuildCount    atomic.Int64
	RebuildNodes    atomic.Int64
	PersistCount    atomic.Int64
	PersistErrors   atomic.Int64
	PersistBytes    atomic.Int64
	TierMoves       atomic.Int64
}

// RecordInsert implements Collector.
func (b *BasicCollector) RecordInsert(_ time.Duration, err error) {
	b.InsertCount.Add(1)
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordQuery implements Collector.
func (b *BasicCollector) RecordQuery(_, results int, duration time.Duration) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
}

// RecordDelete implements Collector.
func (b *BasicCollector) RecordDelete(_ time.Duration, found bool) {
	b.DeleteCount.Add(1)
	if !found {
		b.DeleteMisses.Add(1)
	}
}

// RecordRebuild implements Collector.
func (b *BasicCollector) RecordRebuild(nodes int, _ time.Duration) {
	b.RebuildCount.Add(1)
	b.RebuildNodes.Add(int64(nodes))
}

// RecordPersist implements Collector.
func (b *BasicCollector) RecordPersist(_ string, bytes int, _ time.Duration, err error) {
	b.PersistCount.Add(1)
	b.PersistBytes.Add(int64(bytes))
	if err != nil {
		b.PersistErrors.Add(1)
	}
}

// RecordTierMove implements Collector.
func (b *BasicCollector) RecordTierMove(string, string) {
	b.TierMoves.Add(1)
}

// Stats is a snapshot of BasicCollector state.
type Stats struct {
	InsertCount   int64
	InsertErrors  int64
	QueryCount    int64
	QueryAvgNanos int64
	DeleteCount   int64
	DeleteMisses  int64
	RebuildCount  int64
	PersistCount  int64
	PersistErrors int64
	TierMoves     int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicCollector) GetStats() Stats {
	s := Stats{
		InsertCount:   b.InsertCount.Load(),
		InsertErrors:  b.InsertErrors.Load(),
		QueryCount:    b.QueryCount.Load(),
		DeleteCount:   b.DeleteCount.Load(),
		DeleteMisses:  b.DeleteMisses.Load(),
		RebuildCount:  b.RebuildCount.Load(),
		PersistCount:  b.PersistCount.Load(),
		PersistErrors: b.PersistErrors.Load(),
		TierMoves:     b.TierMoves.Load(),
	}
	if s.QueryCount > 0 {
		s.QueryAvgNanos = b.QueryTotalNanos.Load() / s.QueryCount
	}
	return s
}
