package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Logger = zap.NewNop()
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// InitLogger builds the production JSON logger at the given level.
func InitLogger(lvl zapcore.Level) error {
	level.SetLevel(lvl)

	cfg := zap.NewProductionConfig()
	cfg.Level = level

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = l

	return nil
}

// SetLogLevel changes the level of the running logger.
func SetLogLevel(lvl zapcore.Level) {
	level.SetLevel(lvl)
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns Logger enriched with the trace_id and span_id of
// the active span in ctx.
//
// ctx is also attached as a field: the otelzap bridge uses any
// context.Context field as the context for Emit, which fills the native
// TraceID/SpanID of exported OTLP log records. The string ids stay for
// stdout JSON.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
