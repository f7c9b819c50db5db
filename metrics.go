package topogo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordAnalyze is called after each analysis pass.
	// points/edges describe the pass, err is nil if successful.
	RecordAnalyze(duration time.Duration, points, edges int, err error)

	// RecordTruncation is called when an analysis pass caps its edge buffer.
	RecordTruncation(attempted, capacity int)

	// RecordGridBuild is called after each spatial grid build.
	RecordGridBuild(duration time.Duration, points int, err error)

	// RecordSnapshot is called after each snapshot save or load.
	RecordSnapshot(duration time.Duration, bytes int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAnalyze(time.Duration, int, int, error) {}
func (NoopMetricsCollector) RecordTruncation(int, int)                    {}
func (NoopMetricsCollector) RecordGridBuild(time.Duration, int, error)    {}
func (NoopMetricsCollector) RecordSnapshot(time.Duration, int, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AnalyzeCount      atomic.Int64
	AnalyzeErrors     atomic.Int64
	AnalyzeTotalNanos atomic.Int64
	EdgesTotal        atomic.Int64
	Truncations       atomic.Int64
	GridBuildCount    atomic.Int64
	GridBuildErrors   atomic.Int64
	SnapshotCount     atomic.Int64
	SnapshotErrors    atomic.Int64
	SnapshotBytes     atomic.Int64
}

// RecordAnalyze implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAnalyze(duration time.Duration, points, edges int, err error) {
	b.AnalyzeCount.Add(1)
	b.AnalyzeTotalNanos.Add(duration.Nanoseconds())
	b.EdgesTotal.Add(int64(edges))
	if err != nil {
		b.AnalyzeErrors.Add(1)
	}
}

// RecordTruncation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTruncation(attempted, capacity int) {
	b.Truncations.Add(1)
}

// RecordGridBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGridBuild(duration time.Duration, points int, err error) {
	b.GridBuildCount.Add(1)
	if err != nil {
		b.GridBuildErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(duration time.Duration, bytes int, err error) {
	b.SnapshotCount.Add(1)
	b.SnapshotBytes.Add(int64(bytes))
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AnalyzeCount:    b.AnalyzeCount.Load(),
		AnalyzeErrors:   b.AnalyzeErrors.Load(),
		AnalyzeAvgNanos: b.avgAnalyzeNanos(),
		EdgesTotal:      b.EdgesTotal.Load(),
		Truncations:     b.Truncations.Load(),
		GridBuildCount:  b.GridBuildCount.Load(),
		GridBuildErrors: b.GridBuildErrors.Load(),
		SnapshotCount:   b.SnapshotCount.Load(),
		SnapshotErrors:  b.SnapshotErrors.Load(),
		SnapshotBytes:   b.SnapshotBytes.Load(),
	}
}

func (b *BasicMetricsCollector) avgAnalyzeNanos() int64 {
	count := b.AnalyzeCount.Load()
	if count == 0 {
		return 0
	}

	return b.AnalyzeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AnalyzeCount    int64
	AnalyzeErrors   int64
	AnalyzeAvgNanos int64
	EdgesTotal      int64
	Truncations     int64
	GridBuildCount  int64
	GridBuildErrors int64
	SnapshotCount   int64
	SnapshotErrors  int64
	SnapshotBytes   int64
}
