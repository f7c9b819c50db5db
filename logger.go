package topogo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with topogo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))}
}

// WithPointCount adds a point count field to the logger.
func (l *Logger) WithPointCount(n int) *Logger {
	return &Logger{Logger: l.Logger.With("points", n)}
}

// WithEpsilon adds an epsilon field to the logger.
func (l *Logger) WithEpsilon(epsilon float32) *Logger {
	return &Logger{Logger: l.Logger.With("epsilon", epsilon)}
}

// LogAnalyze logs one analysis pass.
func (l *Logger) LogAnalyze(ctx context.Context, points int, epsilon float32, res *Result, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "analysis pass failed",
			"points", points,
			"epsilon", epsilon,
			"duration", dur,
			"error", err,
		)
		return
	}

	if res.Truncated {
		l.WarnContext(ctx, "analysis pass completed with truncated edge set",
			"points", points,
			"epsilon", epsilon,
			"edges_written", res.EdgesWritten,
			"edges_attempted", res.EdgesAttempted,
			"edges_capacity", res.EdgesCapacity,
			"duration", dur,
		)
		return
	}

	l.DebugContext(ctx, "analysis pass completed",
		"points", points,
		"epsilon", epsilon,
		"edges", res.EdgesWritten,
		"components", res.Diagram.NumComponents(),
		"duration", dur,
	)
}

// LogGridBuild logs a spatial grid build.
func (l *Logger) LogGridBuild(ctx context.Context, points, cells int, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "grid build failed",
			"points", points,
			"cells", cells,
			"error", err,
		)
		return
	}

	l.DebugContext(ctx, "grid build completed",
		"points", points,
		"cells", cells,
		"duration", dur,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
		return
	}

	l.InfoContext(ctx, "snapshot "+op+" completed",
		"name", name,
		"bytes", bytes,
	)
}
