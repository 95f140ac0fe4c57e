package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"induction-torque/internal/config"
	"induction-torque/internal/motor"
	"induction-torque/internal/observability"
	"induction-torque/internal/ratelimit"
	"induction-torque/internal/server"
	"induction-torque/internal/torque"
)

func main() {

	ctx := context.Background()

	// .env first so MOTOR_* and OTEL_* values from it reach config.Load
	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics, OTLP logs
	telemetryShutdown, err := initTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		panic(err)
	}
	defer telemetryShutdown(ctx)

	engine, err := motor.NewEngine(cfg.EngineOptions())
	if err != nil {
		panic(err)
	}

	limiter := ratelimit.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)

	// Router
	router := server.NewRouter(torque.NewHandler(engine, cfg.PlotOptions(), limiter))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("variant", cfg.Engine.Variant),
			zap.String("power_basis", cfg.Engine.PowerBasis),
			zap.Int("samples", engine.SampleCount()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("server shutdown", zap.Error(err))
	}
}
