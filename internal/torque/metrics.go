package torque

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	curveCounter   metric.Int64Counter
	curveHistogram metric.Float64Histogram
	errorCounter   metric.Int64Counter
	peakGauge      metric.Float64Gauge
)

// InitMetrics registers the torque instruments. Call this once at startup
// (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("torque")

	var err error

	curveCounter, err = meter.Int64Counter("torque.curves.total",
		metric.WithDescription("Total number of torque curves computed"),
		metric.WithUnit("{curve}"),
	)
	if err != nil {
		return fmt.Errorf("creating curve counter: %w", err)
	}

	curveHistogram, err = meter.Float64Histogram("torque.curve.duration",
		metric.WithDescription("Time spent computing a torque curve in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.5, 1, 5, 10, 50),
	)
	if err != nil {
		return fmt.Errorf("creating curve histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("torque.errors.total",
		metric.WithDescription("Total number of torque request errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	peakGauge, err = meter.Float64Gauge("torque.peak_torque",
		metric.WithDescription("Peak torque of the last computed curve"),
		metric.WithUnit("N.m"),
	)
	if err != nil {
		return fmt.Errorf("creating peak torque gauge: %w", err)
	}

	return nil
}
