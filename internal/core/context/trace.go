// Package context carries request-scoped values (trace and request ids)
// from the entry point down to logging.
package context

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Origin names the entry point that started a unit of work.
type Origin string

const (
	OriginHTTP Origin = "http"
	OriginCLI  Origin = "cli"
)

// TraceContext identifies one request or CLI invocation. TraceID and SpanID
// use the W3C shapes (32 and 16 lowercase hex digits) so they line up with
// OpenTelemetry ids in the same logs.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
	Origin    Origin
}

type traceContextKey struct{}

// NewTraceContext creates a TraceContext with fresh ids.
func NewTraceContext(origin Origin) *TraceContext {
	traceID := hexID()
	return &TraceContext{
		TraceID:   traceID,
		SpanID:    hexID()[:16],
		RequestID: uuid.NewString(),
		Origin:    origin,
	}
}

func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Fields returns the trace as alternating log keys and values. A nil trace
// has no fields.
func (t *TraceContext) Fields() []any {
	if t == nil {
		return nil
	}
	fields := []any{"trace_id", t.TraceID, "request_id", t.RequestID}
	if t.Origin != "" {
		fields = append(fields, "origin", string(t.Origin))
	}
	return fields
}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}
