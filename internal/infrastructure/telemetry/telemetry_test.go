package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"
)

// setupTestTracer installs an in-memory tracer provider globally for the test
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "catalog-sync-test",
	}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_WithSpanExporter(t *testing.T) {
	ctx := context.Background()
	originalTP := otel.GetTracerProvider()
	originalProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(originalTP)
		otel.SetTextMapPropagator(originalProp)
	})

	exp := tracetest.NewInMemoryExporter()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:       true,
		SamplingRatio: 1,
		ServiceName:   "catalog-sync-test",
	}, zaptest.NewLogger(t), telemetry.WithSpanExporter(exp))
	require.NoError(t, err)
	require.True(t, tp.IsEnabled())

	_, span := tp.Tracer("test").Start(ctx, "catalog_sync.run")
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "catalog_sync.run", spans[0].Name)
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")

	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	ctx := context.Background()
	original := otel.GetTracerProvider()
	defer otel.SetTracerProvider(original)

	// the gRPC exporter connects lazily, so no collector is needed to build it
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     0.5,
		ServiceName:       "catalog-sync-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{Enabled: false, ServiceName: "catalog-sync-test"}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewMeterProvider_WithReader(t *testing.T) {
	ctx := context.Background()
	original := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(original) })

	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:     true,
		ServiceName: "catalog-sync-test",
	}, zaptest.NewLogger(t), telemetry.WithReader(reader))
	require.NoError(t, err)
	require.True(t, mp.IsEnabled())

	metrics, err := telemetry.NewSyncMetrics(mp.Meter(telemetry.SyncMeterName))
	require.NoError(t, err)
	metrics.RecordSync(ctx, catalog.SyncTriggerHTTP, catalog.SyncRunCompleted, catalog.SyncStats{Fetched: 2, Inserted: 2}, time.Second)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, telemetry.SyncMeterName, rm.ScopeMetrics[0].Scope.Name)

	assert.NoError(t, mp.Shutdown(ctx))
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartServiceSpan(context.Background(), "catalog_sync", "run",
		telemetry.WithAttribute(telemetry.SpanAttrTrigger, "manual"),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))

	telemetry.SetAttributes(span,
		telemetry.SpanAttrFetched, 3,
		telemetry.SpanAttrInserted, int64(2),
		42, "ignored",
		"dangling",
	)
	telemetry.AddEvent(span, "record_unparsed", "external_id", "ext-1")
	telemetry.SetOK(span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "catalog_sync.run", got.Name())
	assert.Equal(t, trace.SpanKindServer, got.SpanKind())
	assert.Equal(t, codes.Ok, got.Status().Code)

	attrs := map[string]string{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "manual", attrs[telemetry.SpanAttrTrigger])
	assert.Equal(t, "3", attrs[telemetry.SpanAttrFetched])
	assert.Equal(t, "2", attrs[telemetry.SpanAttrInserted])
	assert.Len(t, attrs, 3)

	require.Len(t, got.Events(), 1)
	assert.Equal(t, "record_unparsed", got.Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "catalog_sync.fetch")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(span, errors.New("upstream unavailable"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "upstream unavailable", spans[0].Status().Description)
}

func TestHelpers_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "e")
	})
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}
