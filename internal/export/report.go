package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"induction-torque/internal/motor"
)

// Report is the content of a printable torque-slip report.
type Report struct {
	Title      string
	Parameters motor.MotorParameters
	Curve      motor.Curve
	PlotPNG    []byte
	Generated  time.Time
}

const curveImage = "curve"

// WriteReport renders r as an A4 landscape PDF: parameters, the plot and
// the full table.
func WriteReport(w io.Writer, r Report) error {
	if r.Title == "" {
		r.Title = "Induction Motor Torque-Slip Report"
	}
	if r.Generated.IsZero() {
		r.Generated = time.Now()
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, r.Title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	p := r.Parameters
	lines := []string{
		fmt.Sprintf("Date: %s", r.Generated.Format("2006-01-02")),
		fmt.Sprintf("rs = %g ohm   xs = %g ohm   rr = %g ohm   xr = %g ohm   xm = %g ohm", p.RS, p.XS, p.RR, p.XR, p.XM),
		fmt.Sprintf("V = %g V (%s)   P = %g CV   I = %d A   f = %g Hz   poles = %d", p.LineVoltage, p.Connection, p.RatedPowerCV, p.RatedCurrent, p.Frequency, p.Poles),
	}
	if s := r.Curve.Summary; s != nil {
		lines = append(lines, fmt.Sprintf("Peak torque %.2f N.m at s = %.3f   starting torque %.2f N.m   ns = %.0f rpm",
			s.PeakTorque, s.PeakSlip, s.StartingTorque, s.SynchronousSpeedRPM))
	}
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	if len(r.PlotPNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(curveImage, opts, bytes.NewReader(r.PlotPNG))
		pdf.ImageOptions(curveImage, 10, pdf.GetY(), 180, 0, true, opts, 0, "")
	}

	pdf.AddPage()
	writeTable(pdf, r.Curve.Rows)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func writeTable(pdf *gofpdf.Fpdf, rows []motor.TorqueRow) {
	const cellW, cellH = 22.5, 5

	pdf.SetFont("Helvetica", "B", 8)
	for _, c := range motor.TableColumns {
		pdf.CellFormat(cellW, cellH+1, c, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 7)
	for _, r := range rows {
		for _, v := range r.Values() {
			pdf.CellFormat(cellW, cellH, fmt.Sprintf("%.5g", v), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
