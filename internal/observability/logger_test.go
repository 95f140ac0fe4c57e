package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLoggerHonoursLevel(t *testing.T) {
	oldLogger := Logger
	t.Cleanup(func() {
		Logger = oldLogger
		SetLogLevel(zapcore.InfoLevel)
	})

	if err := InitLogger(zapcore.WarnLevel); err != nil {
		t.Fatalf("initializing logger: %v", err)
	}
	if Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info to be disabled at warn level")
	}

	SetLogLevel(zapcore.DebugLevel)
	if !Logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug to be enabled after SetLogLevel")
	}
}

func TestLoggerWithTraceWithoutSpan(t *testing.T) {
	oldLogger := Logger
	Logger = zap.NewNop()
	t.Cleanup(func() { Logger = oldLogger })

	if got := LoggerWithTrace(context.Background()); got != Logger {
		t.Fatal("expected the base logger when ctx carries no span")
	}
}
