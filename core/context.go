package core

import "context"

// Context keys for processing options
type contextKey string

const (
	runIDKey       contextKey = "runID"
	suppressLogKey contextKey = "suppressLog"
)

// withRunID stores the history run ID in the context
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// runIDFromContext returns the history run ID, or 0 when history is off
func runIDFromContext(ctx context.Context) int64 {
	val := ctx.Value(runIDKey)
	if val == nil {
		return 0
	}
	id, ok := val.(int64)
	if !ok {
		return 0
	}
	return id
}

// WithSuppressLog silences per-class log lines, used by the MCP server where
// stderr is the only diagnostics channel
func WithSuppressLog(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressLogKey, true)
}

// shouldSuppressLog returns whether per-class logging is suppressed
func shouldSuppressLog(ctx context.Context) bool {
	val := ctx.Value(suppressLogKey)
	if val == nil {
		return false // default: log each class
	}
	suppress, ok := val.(bool)
	return ok && suppress
}
