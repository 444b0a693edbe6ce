package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	syncRunIDKey
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// tag stores value under key and attaches logger tagged with field
func tag(ctx context.Context, logger *zap.Logger, key ctxKey, field, value string) (context.Context, *zap.Logger) {
	tagged := logger.With(zap.String(field, value))
	return WithContext(context.WithValue(ctx, key, value), tagged), tagged
}

// WithRequestID tags ctx and its logger with an HTTP request ID
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return tag(ctx, logger, requestIDKey, "request_id", requestID)
}

// WithSyncRunID tags ctx and its logger with the sync run being executed
func WithSyncRunID(ctx context.Context, logger *zap.Logger, runID string) (context.Context, *zap.Logger) {
	return tag(ctx, logger, syncRunIDKey, "sync_run_id", runID)
}

func value(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// GetRequestID returns the request ID in ctx, or ""
func GetRequestID(ctx context.Context) string { return value(ctx, requestIDKey) }

// GetSyncRunID returns the sync run ID in ctx, or ""
func GetSyncRunID(ctx context.Context) string { return value(ctx, syncRunIDKey) }

// ContextLogger logs with the correlation IDs found in a context:
// trace_id and span_id from the active span, plus request_id and
// sync_run_id when the base logger does not already carry them.
type ContextLogger struct {
	ctx  context.Context
	base *zap.Logger
	// ids is set when base came from ctx and so already has the IDs
	ids bool
}

// L logs through the logger attached to ctx.
//
//	logger.L(ctx).Info("Products fetched", zap.Int("count", n))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, base: FromContext(ctx), ids: true}
}

// WithLogger logs through l, adding the IDs stored in ctx
func WithLogger(ctx context.Context, l *zap.Logger) *ContextLogger {
	return &ContextLogger{ctx: ctx, base: l}
}

func (cl *ContextLogger) logger() *zap.Logger {
	if cl.base == nil {
		return zap.NewNop()
	}
	return cl.base
}

func (cl *ContextLogger) correlated() *zap.Logger {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(cl.ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()))
	}
	if !cl.ids {
		if id := GetRequestID(cl.ctx); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if id := GetSyncRunID(cl.ctx); id != "" {
			fields = append(fields, zap.String("sync_run_id", id))
		}
	}
	if len(fields) == 0 {
		return cl.logger()
	}
	return cl.logger().With(fields...)
}

// With returns a child carrying fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, base: cl.logger().With(fields...), ids: cl.ids}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.correlated().Debug(msg, fields...)
}
func (cl *ContextLogger) Info(msg string, fields ...zap.Field) { cl.correlated().Info(msg, fields...) }
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) { cl.correlated().Warn(msg, fields...) }
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.correlated().Error(msg, fields...)
}

// Zap returns the correlated zap logger, for callers that need zap's API
func (cl *ContextLogger) Zap() *zap.Logger { return cl.correlated() }
