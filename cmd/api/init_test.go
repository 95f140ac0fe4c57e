package main

import (
	"context"
	"errors"
	"slices"
	"testing"

	"induction-torque/internal/config"
)

// recorder hands out initialisers that log their start and shutdown.
type recorder struct {
	events []string
}

func (r *recorder) init(name string, fail bool) initFunc {
	return func(context.Context) (func(context.Context) error, error) {
		if fail {
			return nil, errors.New(name + " unavailable")
		}
		r.events = append(r.events, "start "+name)
		return func(context.Context) error {
			r.events = append(r.events, "stop "+name)
			return nil
		}, nil
	}
}

func TestTelemetryStartShutsDownStartedProvidersOnFailure(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelemetryConfig
		tel  func(r *recorder) telemetry
		want []string
	}{
		{
			name: "metrics fail",
			cfg:  config.TelemetryConfig{Enabled: true},
			tel: func(r *recorder) telemetry {
				return telemetry{tracing: r.init("tracing", false), metrics: r.init("metrics", true), logging: r.init("logging", false)}
			},
			want: []string{"start tracing", "stop tracing"},
		},
		{
			name: "logs fail",
			cfg:  config.TelemetryConfig{Enabled: true, Logs: true},
			tel: func(r *recorder) telemetry {
				return telemetry{tracing: r.init("tracing", false), metrics: r.init("metrics", false), logging: r.init("logging", true)}
			},
			want: []string{"start tracing", "start metrics", "stop metrics", "stop tracing"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &recorder{}

			shutdown, err := tc.tel(r).start(context.Background(), tc.cfg)
			if err == nil {
				t.Fatal("expected an error")
			}
			if shutdown != nil {
				t.Fatal("expected no shutdown func on failure")
			}
			if !slices.Equal(r.events, tc.want) {
				t.Fatalf("expected events %v, got %v", tc.want, r.events)
			}
		})
	}
}

func TestTelemetryStartShutsDownInReverseOrder(t *testing.T) {
	r := &recorder{}
	tel := telemetry{tracing: r.init("tracing", false), metrics: r.init("metrics", false), logging: r.init("logging", false)}

	shutdown, err := tel.start(context.Background(), config.TelemetryConfig{Enabled: true, Logs: true})
	if err != nil {
		t.Fatalf("starting telemetry: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutting down: %v", err)
	}

	want := []string{"start tracing", "start metrics", "start logging", "stop logging", "stop metrics", "stop tracing"}
	if !slices.Equal(r.events, want) {
		t.Fatalf("expected events %v, got %v", want, r.events)
	}
}
