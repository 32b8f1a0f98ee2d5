package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func spanCtx(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, FromContext(WithContext(context.Background(), base)))
	assert.NotNil(t, FromContext(context.Background()))

	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(ctx))
}

func TestContextValues(t *testing.T) {
	base, logs := observed()
	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, _ = WithStoreID(ctx, base, "store-1")
	ctx, l := WithCustomerID(ctx, base, "customer-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "store-1", GetStoreID(ctx))
	assert.Equal(t, "customer-1", GetCustomerID(ctx))
	assert.Same(t, l, FromContext(ctx))

	l.Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "customer-1", logs.All()[0].ContextMap()["customer_id"])
}

func TestContextValues_Missing(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetStoreID(ctx))
	assert.Empty(t, GetCustomerID(ctx))
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestTraceIDs(t *testing.T) {
	ctx := spanCtx(t)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
	assert.Equal(t, "00f067aa0ba902b7", GetSpanID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	base, logs := observed()

	assert.Same(t, base, WithTraceContext(context.Background(), base))

	WithTraceContext(spanCtx(t), base).Info("traced")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
}

func TestContextLogger_EnrichesEntries(t *testing.T) {
	base, logs := observed()
	ctx := spanCtx(t)
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, StoreIDKey, "store-9")
	ctx = WithContext(ctx, base)

	L(ctx).With(zap.String("order_id", "o-1")).Warn("order placed", zap.Int("items", 2))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "store-9", fields["store_id"])
	assert.Equal(t, "o-1", fields["order_id"])
	assert.Equal(t, int64(2), fields["items"])
	assert.NotContains(t, fields, "customer_id")
	assert.Contains(t, fields, "trace_id")
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)

	assert.NotPanics(t, func() {
		cl.Debug("debug")
		cl.Info("info")
		cl.With(zap.String("k", "v")).Error("error")
	})
	assert.NotNil(t, cl.Zap())
	assert.NotNil(t, cl.Sugar())
}
