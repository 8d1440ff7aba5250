package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func bufferedLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func sampledSpanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		base, _ := bufferedLogger()
		ctx := WithContext(context.Background(), base)
		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("falls back to no-op", func(t *testing.T) {
		assert.NotPanics(t, func() { FromContext(context.Background()).Info("dropped") })
	})

	t.Run("ignores wrong value type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		assert.NotPanics(t, func() { FromContext(ctx).Info("dropped") })
	})
}

func TestWithRequestIDAndPrincipal(t *testing.T) {
	base, buf := bufferedLogger()

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, enriched := WithPrincipal(ctx, FromContext(ctx), "user-7", "cashier1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-7", GetUserID(ctx))
	assert.Equal(t, "cashier1", GetUsername(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	L(ctx).Info("sale completed", zap.String("sale_number", "SL-20260101-0001"))
	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":"user-7"`)
	assert.Contains(t, out, `"username":"cashier1"`)
	assert.Contains(t, out, `"sale_number":"SL-20260101-0001"`)
}

func TestContextGetters_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetUsername(ctx))
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestTraceCorrelation(t *testing.T) {
	t.Run("valid span context adds ids", func(t *testing.T) {
		ctx := sampledSpanContext(t)
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
		assert.Equal(t, "00f067aa0ba902b7", GetSpanID(ctx))

		base, buf := bufferedLogger()
		WithLogger(ctx, base).Warn("low stock")
		assert.Contains(t, buf.String(), `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
		assert.Contains(t, buf.String(), `"span_id":"00f067aa0ba902b7"`)
	})

	t.Run("noop span leaves logger unchanged", func(t *testing.T) {
		ctx, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "span")
		defer span.End()

		base := zap.NewNop()
		assert.Same(t, base, WithTraceContext(ctx, base))
		assert.Empty(t, GetTraceID(ctx))
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("With keeps context and adds fields", func(t *testing.T) {
		base, buf := bufferedLogger()
		cl := WithLogger(context.Background(), base).
			With(zap.String("component", "warranty")).
			With(zap.Int("expired", 3))
		cl.Info("sweep finished")

		out := buf.String()
		assert.Contains(t, out, `"component":"warranty"`)
		assert.Contains(t, out, `"expired":3`)
		assert.NotContains(t, out, `"request_id"`)
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		cl := &ContextLogger{ctx: context.Background()}
		assert.NotPanics(t, func() {
			cl.Debug("d")
			cl.Info("i")
			cl.Warn("w")
			cl.Error("e")
			cl.With(zap.String("k", "v")).Zap().Info("z")
		})
	})
}
