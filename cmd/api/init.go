package main

import (
	"context"
	"errors"

	"induction-torque/internal/config"
	"induction-torque/internal/observability"
	"induction-torque/internal/torque"
)

type initFunc func(context.Context) (func(context.Context) error, error)

// telemetry holds the provider initialisers so tests can stand in for
// the OTLP exporters.
type telemetry struct {
	tracing initFunc
	metrics initFunc
	logging initFunc
}

var otlpTelemetry = telemetry{
	tracing: observability.InitTracing,
	metrics: initMetrics,
	logging: observability.InitLogging,
}

// initTelemetry wires the OTLP providers the config asks for and returns
// one shutdown func for all of them.
func initTelemetry(ctx context.Context, cfg config.TelemetryConfig) (func(context.Context) error, error) {
	return otlpTelemetry.start(ctx, cfg)
}

// start runs the initialisers in order. If one fails, the providers
// already started are shut down before the error is returned.
func (t telemetry) start(ctx context.Context, cfg config.TelemetryConfig) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if !cfg.Enabled {
		return shutdown, torque.InitMetrics()
	}

	steps := []initFunc{t.tracing, t.metrics}
	if cfg.Logs {
		steps = append(steps, t.logging)
	}

	for _, step := range steps {
		stop, err := step(ctx)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, stop)
	}

	return shutdown, nil
}

// initMetrics initialises the meter provider and then the torque
// instruments, which bind to whichever provider is global at creation.
func initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := torque.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	return shutdown, nil
}
