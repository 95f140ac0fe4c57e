package motor

import (
	"cmp"
	"fmt"
	"slices"
)

// TorqueRow is one denormalized table row. Everything except the slip,
// the torque and the three referred rotor quantities is constant across a
// curve. JSON keys match the table the web page renders.
type TorqueRow struct {
	Slip                   float64 `json:"s"`
	Torque                 float64 `json:"T"`
	Rth                    float64 `json:"Rsth"`
	Xth                    float64 `json:"Xsth"`
	RotorReactance         float64 `json:"x_r"`
	RotorResistanceInverse float64 `json:"r_r0"`
	K1                     float64 `json:"k1"`
	RotorResistance        float64 `json:"r_r"`
	K2                     float64 `json:"k2"`
	Vth                    float64 `json:"Vth"`
	W                      float64 `json:"w"`
	Xe2                    float64 `json:"Xe2"`
}

// TableColumns is the column order used by every tabular export.
var TableColumns = []string{"s", "T", "Rsth", "Xsth", "x_r", "r_r0", "k1", "r_r", "k2", "Vth", "w", "Xe2"}

// Values returns the row in TableColumns order.
func (r TorqueRow) Values() []float64 {
	return []float64{
		r.Slip, r.Torque, r.Rth, r.Xth,
		r.RotorReactance, r.RotorResistanceInverse, r.K1, r.RotorResistance,
		r.K2, r.Vth, r.W, r.Xe2,
	}
}

// checkFinite rejects a row carrying NaN or ±Inf in any column.
func (r TorqueRow) checkFinite() error {
	for i, v := range r.Values() {
		if !finite(v) {
			return fmt.Errorf("%w: %s at slip %g is %g", ErrSingularSample, TableColumns[i], r.Slip, v)
		}
	}
	return nil
}

// TheveninConstants are computed once per curve and broadcast to every row.
type TheveninConstants struct {
	Rth float64 `json:"Rsth"`
	Xth float64 `json:"Xsth"`
	K1  float64 `json:"k1"`
	K2  float64 `json:"k2"`
	Xe2 float64 `json:"Xe2"`
	Vth float64 `json:"Vth"`
	Ws  float64 `json:"w"`
}

// Summary carries figures read off the sweep.
type Summary struct {
	PeakTorque          float64 `json:"peak_torque"`
	PeakSlip            float64 `json:"peak_slip"`
	StartingTorque      float64 `json:"starting_torque"`
	RatedPowerWatts     float64 `json:"rated_power_w"`
	SynchronousSpeedRPM float64 `json:"synchronous_speed_rpm"`
}

// Curve is a torque-slip table in descending slip order.
type Curve struct {
	Rows     []TorqueRow        `json:"table_data"`
	Thevenin *TheveninConstants `json:"thevenin,omitempty"`
	Summary  *Summary           `json:"summary,omitempty"`
}

// Points returns the (slip, torque) pairs in row order, for plotting.
func (c Curve) Points() (slip, torque []float64) {
	slip = make([]float64, len(c.Rows))
	torque = make([]float64, len(c.Rows))
	for i, r := range c.Rows {
		slip[i] = r.Slip
		torque[i] = r.Torque
	}
	return slip, torque
}

// sample is one evaluated grid point before table assembly.
type sample struct {
	slip   float64
	torque float64
}

// orderDescending reverses the ascending sweep and then stable-sorts by
// slip, so rows are non-increasing in slip with ties kept in sweep order.
func orderDescending(samples []sample) []sample {
	out := slices.Clone(samples)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b sample) int {
		return cmp.Compare(b.slip, a.slip)
	})
	return out
}
