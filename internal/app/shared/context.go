package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// ContextKey is the key type for values this package stores on request
// contexts.
type ContextKey string

// TraceIDKey is the context key for the per-request trace ID.
const TraceIDKey ContextKey = "traceID"

// traceIDLength is the number of random bytes in a trace ID.
const traceIDLength = 16

// SetTraceID adds a fresh trace ID to the context for correlating logs
// and error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" if absent.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func newTraceID() string {
	b := make([]byte, traceIDLength)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
