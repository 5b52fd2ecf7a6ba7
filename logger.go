package vecmem

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vecmem-specific context.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr.
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
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithNamespace tags the logger with an agent namespace.
func (l *Logger) WithNamespace(agentID, namespace string) *Logger {
	return &Logger{Logger: l.Logger.With("agent_id", agentID, "namespace", namespace)}
}

// LogOpen logs opening a store.
func (l *Logger) LogOpen(ctx context.Context, path string, memories int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "store opened",
			"path", path,
			"memories", memories,
		)
	}
}

// LogRemember logs storing a memory.
func (l *Logger) LogRemember(ctx context.Context, id string, updated bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remember failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remember completed",
			"id", id,
			"updated", updated,
		)
	}
}

// LogRecall logs a similarity recall.
func (l *Logger) LogRecall(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "recall failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "recall completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogForget logs removing a memory.
func (l *Logger) LogForget(ctx context.Context, id string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "forget failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "forget completed",
			"id", id,
		)
	}
}

// LogFlush logs writing the segment file.
func (l *Logger) LogFlush(ctx context.Context, path string, segments, witnessLen int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "segment file written",
			"path", path,
			"segments", segments,
			"witness_segments", witnessLen,
		)
	}
}
