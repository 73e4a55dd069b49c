package context

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext identifies one request across logs, audit rows and spans.
type TraceContext struct {
	TraceID   string
	RequestID string
	SpanID    string
}

type traceContextKey struct{}

// WithTrace stores tc in ctx.
func WithTrace(ctx context.Context, tc *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// GetTrace returns the TraceContext of ctx, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns the request ID of ctx or "".
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext builds a TraceContext for an incoming request.
// An active recording span wins over the X-Trace-ID header; a missing request
// ID is generated and doubles as the trace ID when nothing else is known.
func NewTraceContext(ctx context.Context, requestID, traceID string) *TraceContext {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	tc := &TraceContext{RequestID: requestID, TraceID: traceID}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		tc.TraceID = sc.TraceID().String()
		tc.SpanID = sc.SpanID().String()
	}
	if tc.TraceID == "" {
		tc.TraceID = requestID
	}
	return tc
}

// LogFields returns the logger key-value pairs of tc.
func (t *TraceContext) LogFields() []any {
	if t == nil {
		return nil
	}
	fields := []any{"request_id", t.RequestID, "trace_id", t.TraceID}
	if t.SpanID != "" {
		fields = append(fields, "span_id", t.SpanID)
	}
	return fields
}
