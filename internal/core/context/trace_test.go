package context

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceContext(t *testing.T) {
	tc := NewTraceContext(OriginHTTP)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), tc.TraceID)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), tc.SpanID)
	assert.NotEmpty(t, tc.RequestID)
	assert.Equal(t, OriginHTTP, tc.Origin)
	assert.NotEqual(t, tc.TraceID, NewTraceContext(OriginHTTP).TraceID)
}

func TestTraceContext_Fields(t *testing.T) {
	var missing *TraceContext
	assert.Nil(t, missing.Fields())

	tc := &TraceContext{TraceID: "t", RequestID: "r"}
	assert.Equal(t, []any{"trace_id", "t", "request_id", "r"}, tc.Fields())

	tc.Origin = OriginCLI
	assert.Equal(t, []any{"trace_id", "t", "request_id", "r", "origin", "cli"}, tc.Fields())
}

func TestWithTrace(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetTrace(ctx))
	assert.Empty(t, GetRequestID(ctx))

	tc := NewTraceContext(OriginCLI)
	ctx = WithTrace(ctx, tc)
	require.Same(t, tc, GetTrace(ctx))
	assert.Equal(t, tc.RequestID, GetRequestID(ctx))
}
