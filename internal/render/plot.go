package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"induction-torque/internal/motor"
)

// Options control the PNG figure.
type Options struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
	Title  string
	XLabel string
	YLabel string
}

// DefaultOptions is a 10x6 inch figure at 100 dpi.
func DefaultOptions() Options {
	return Options{
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
		DPI:    100,
		Title:  "Torque vs. slip",
		XLabel: "Slip (s)",
		YLabel: "Torque (N·m)",
	}
}

// ErrEmptyCurve is returned when there is nothing to draw.
var ErrEmptyCurve = errors.New("curve has no points")

// CurvePlot builds the torque-slip plot. The slip axis runs from 1 on the
// left down to 0 on the right.
func CurvePlot(c motor.Curve, opts Options) (*plot.Plot, error) {
	slip, torque := c.Points()
	if len(slip) == 0 {
		return nil, ErrEmptyCurve
	}

	pts := make(plotter.XYs, len(slip))
	for i := range slip {
		pts[i].X = slip[i]
		pts[i].Y = torque[i]
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("building torque line: %w", err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	p.X.Min = 0
	p.X.Max = 1
	p.X.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	p.Add(plotter.NewGrid(), line)
	p.Legend.Add("Torque", line)
	p.Legend.Top = true

	return p, nil
}

// WritePNG draws p onto a fresh canvas and encodes it. The canvas lives
// only for the duration of the call.
func WritePNG(w io.Writer, p *plot.Plot, opts Options) error {
	c := vgimg.NewWith(
		vgimg.UseWH(opts.Width, opts.Height),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// CurvePNG renders c straight to PNG bytes.
func CurvePNG(c motor.Curve, opts Options) ([]byte, error) {
	p, err := CurvePlot(c, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, p, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CurvePNGBase64 is CurvePNG encoded for embedding in a JSON response.
func CurvePNGBase64(c motor.Curve, opts Options) (string, error) {
	b, err := CurvePNG(c, opts)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
