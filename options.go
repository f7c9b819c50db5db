package topogo

import (
	"log/slog"

	"github.com/hupe1980/topogo/resource"
	"github.com/hupe1980/topogo/snapshot"
)

type options struct {
	maxEdges         int
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	snapshotOptions  []func(*snapshot.Options)
}

// Option configures Analyzer behavior.
type Option func(*options)

// WithMaxEdges caps the pre-allocated edge buffer per pass.
//
// The cap trades memory for completeness: dense point sets at a generous
// epsilon can exceed it, in which case the pass reports a truncated edge set
// rather than failing. If n <= 0, the rips package default applies.
func WithMaxEdges(n int) Option {
	return func(o *options) {
		o.maxEdges = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController configures global resource limits (memory budget
// for the quadratic matrices, concurrent passes, snapshot IO throughput).
//
// The controller is owned by the caller and may be shared between analyzers.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithSnapshotOptions configures how SaveSnapshot encodes snapshots
// (compression, metadata codec).
func WithSnapshotOptions(optFns ...func(*snapshot.Options)) Option {
	return func(o *options) {
		o.snapshotOptions = optFns
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
