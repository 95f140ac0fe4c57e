package torque

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"induction-torque/internal/export"
	"induction-torque/internal/handlers"
	"induction-torque/internal/motor"
	"induction-torque/internal/observability"
	"induction-torque/internal/ratelimit"
	"induction-torque/internal/render"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("torque")

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxFilename    = "table_data.xlsx"
	pdfFilename     = "torque_report.pdf"
)

// Handler serves the torque endpoints with one shared engine.
type Handler struct {
	engine   *motor.Engine
	plot     render.Options
	throttle []func(http.Handler) http.Handler
}

// NewHandler returns a Handler. limiter may be nil to leave /torque/update
// unthrottled.
func NewHandler(engine *motor.Engine, plot render.Options, limiter *ratelimit.IPRateLimiter) *Handler {
	h := &Handler{engine: engine, plot: plot}
	if limiter != nil {
		h.throttle = append(h.throttle, limiter.Middleware)
	}
	return h
}

// Curve handles POST /torque/curve
func (h *Handler) Curve(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "curve")
	defer span.End()

	p, err := decodeMotorParameters(w, r)
	if err != nil {
		h.fail(ctx, span, logger, "curve", err, w)
		return
	}
	span.SetAttributes(motorAttributes(p)...)

	c, err := h.computeCurve(ctx, span, p)
	if err != nil {
		h.fail(ctx, span, logger, "curve", err, w)
		return
	}

	img, err := render.CurvePNGBase64(c, h.plot)
	if err != nil {
		h.fail(ctx, span, logger, "curve", fmt.Errorf("render plot: %w", err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("torque curve computed",
		zap.Int("rows", len(c.Rows)),
		zap.Float64("peak_torque", c.Summary.PeakTorque),
		zap.Float64("peak_slip", c.Summary.PeakSlip),
		zap.String("connection", string(p.Connection)),
	)

	resp := CurveResponse{
		Image:     img,
		TableData: c.Rows,
		K1:        c.Thevenin.K1,
		K2:        c.Thevenin.K2,
		Frequency: p.Frequency,
		Thevenin:  c.Thevenin,
		Summary:   c.Summary,
	}
	if err := handlers.WriteJSON(w, http.StatusOK, resp); err != nil {
		writeFailed(span, logger, err)
	}
}

// Update handles POST /torque/update. It recomputes the coefficient-driven
// curve for the interactive sliders.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "update")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(ctx, span, logger, "update", fmt.Errorf("%w: %w", errDecode, err), w)
		return
	}

	a := req.Params()
	span.SetAttributes(
		attribute.Float64("torque.k1", a.K1),
		attribute.Float64("torque.k2", a.K2),
		attribute.Float64("torque.frequency", a.Frequency),
	)

	start := time.Now()
	c, err := h.engine.ComputeApproxCurve(a)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		h.fail(ctx, span, logger, "update", err, w)
		return
	}
	h.recordCurve(ctx, span, "update", c, elapsed)

	img, err := render.CurvePNGBase64(c, h.plot)
	if err != nil {
		h.fail(ctx, span, logger, "update", fmt.Errorf("render plot: %w", err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("approximate curve computed",
		zap.Float64("k1", a.K1),
		zap.Float64("k2", a.K2),
		zap.Float64("f", a.Frequency),
		zap.Float64("duration_ms", elapsed),
	)

	if err := handlers.WriteJSON(w, http.StatusOK, UpdateResponse{Image: img, TableData: c.Rows}); err != nil {
		writeFailed(span, logger, err)
	}
}

// Export handles POST /torque/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "export")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(ctx, span, logger, "export", fmt.Errorf("%w: %w", errDecode, err), w)
		return
	}
	span.SetAttributes(attribute.Int("torque.rows", len(req.TableData)))

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, req.TableData); err != nil {
		h.fail(ctx, span, logger, "export", fmt.Errorf("write workbook: %w", err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("table exported", zap.Int("rows", len(req.TableData)), zap.Int("bytes", buf.Len()))

	handlers.WriteAttachment(w, xlsxContentType, xlsxFilename, buf.Bytes())
}

// Report handles POST /torque/report
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "report")
	defer span.End()

	p, err := decodeMotorParameters(w, r)
	if err != nil {
		h.fail(ctx, span, logger, "report", err, w)
		return
	}
	span.SetAttributes(motorAttributes(p)...)

	c, err := h.computeCurve(ctx, span, p)
	if err != nil {
		h.fail(ctx, span, logger, "report", err, w)
		return
	}

	img, err := render.CurvePNG(c, h.plot)
	if err != nil {
		h.fail(ctx, span, logger, "report", fmt.Errorf("render plot: %w", err), w)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, export.Report{Parameters: p, Curve: c, PlotPNG: img}); err != nil {
		h.fail(ctx, span, logger, "report", fmt.Errorf("write report: %w", err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("report generated", zap.Int("rows", len(c.Rows)), zap.Int("bytes", buf.Len()))

	handlers.WriteAttachment(w, "application/pdf", pdfFilename, buf.Bytes())
}

func (h *Handler) start(r *http.Request, opName string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "torque."+opName,
		trace.WithAttributes(
			attribute.String("torque.operation", opName),
			attribute.String("request.id", requestID),
		),
	)

	logger := observability.LoggerWithTrace(ctx).With(
		zap.String("operation", opName),
		zap.String("request_id", requestID),
	)
	return ctx, span, logger
}

// computeCurve runs the slip sweep in its own child span.
func (h *Handler) computeCurve(ctx context.Context, parent trace.Span, p motor.MotorParameters) (motor.Curve, error) {
	opts := h.engine.Options()
	ctx, span := tracer.Start(ctx, "torque.sweep",
		trace.WithAttributes(
			attribute.String("torque.variant", string(opts.Variant)),
			attribute.String("torque.power_basis", string(opts.PowerBasis)),
			attribute.Int("torque.samples", h.engine.SampleCount()),
		),
	)
	defer span.End()

	start := time.Now()
	c, err := h.engine.ComputeCurve(p)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sweep failed")
		return motor.Curve{}, err
	}
	span.SetStatus(codes.Ok, "")

	h.recordCurve(ctx, parent, "curve", c, elapsed)
	return c, nil
}

func (h *Handler) recordCurve(ctx context.Context, span trace.Span, opName string, c motor.Curve, elapsed float64) {
	attrs := metric.WithAttributes(attribute.String("operation", opName))
	curveCounter.Add(ctx, 1, attrs)
	curveHistogram.Record(ctx, elapsed, attrs)

	peak := peakTorque(c)
	peakGauge.Record(ctx, peak, attrs)

	span.AddEvent("curve.complete", trace.WithAttributes(
		attribute.Int("rows", len(c.Rows)),
		attribute.Float64("peak_torque", peak),
		attribute.Float64("duration_ms", elapsed),
	))
}

// fail maps err onto an HTTP status: bad input is the client's problem,
// everything else is ours.
func (h *Handler) fail(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	var (
		status = http.StatusInternalServerError
		msg    = "internal error"
		maxErr *http.MaxBytesError
	)
	switch {
	case errors.Is(err, motor.ErrInvalidParameter), errors.Is(err, motor.ErrSingularSample):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.As(err, &maxErr):
		status, msg = http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, errDecode):
		status, msg = http.StatusBadRequest, "invalid request body"
	}
	observability.RecordError(ctx, span, logger, errorCounter, opName, msg, err, status, w)
}

// writeFailed records a response that could not be written after the
// handler had succeeded.
func writeFailed(span trace.Span, logger *zap.Logger, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "write response")
	logger.Error("write response", zap.Error(err))
}

func peakTorque(c motor.Curve) float64 {
	if c.Summary != nil {
		return c.Summary.PeakTorque
	}
	var peak float64
	for _, row := range c.Rows {
		peak = max(peak, row.Torque)
	}
	return peak
}

func motorAttributes(p motor.MotorParameters) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64("motor.line_voltage", p.LineVoltage),
		attribute.Float64("motor.frequency", p.Frequency),
		attribute.Int("motor.poles", p.Poles),
		attribute.String("motor.connection", string(p.Connection)),
	}
}
