package motor

import (
	"fmt"
	"math"
)

// Table values emitted by the approximate curve so its rows have the same
// shape as the circuit sweep. They are placeholders with no physical meaning.
const (
	approxRth                    = 0.1
	approxXth                    = 0.2
	approxRotorReactancePerSlip  = 0.3
	approxRotorResistanceInverse = 0.4
	approxRotorResistancePerSlip = 0.5
	approxVoltsPerHertz          = 220.0
	approxXe2                    = 0.6
)

// ApproxParameters drive the coefficient path. Poles falls back to the
// engine's ApproxPoleCount when zero.
type ApproxParameters struct {
	K1        float64 `json:"k1"`
	K2        float64 `json:"k2"`
	Frequency float64 `json:"f"`
	Poles     int     `json:"poles,omitempty"`
}

// DefaultApproxParameters are the values assumed for fields an update
// request leaves out.
func DefaultApproxParameters() ApproxParameters {
	return ApproxParameters{K1: 1, K2: 1, Frequency: 60}
}

func (a ApproxParameters) validate() error {
	if !finite(a.K1) {
		return invalid("k1", "must be a finite number")
	}
	if !finite(a.K2) || a.K2 < 0 {
		return invalid("k2", "must be a finite number >= 0, got %g", a.K2)
	}
	if !finite(a.Frequency) || a.Frequency <= 0 {
		return invalid("f", "frequency must be > 0, got %g", a.Frequency)
	}
	if a.Poles != 0 {
		return validatePoles(a.Poles)
	}
	return nil
}

// ComputeApproxCurve evaluates T(s) = k1·(1-s)·ws / (k2+s) without any
// circuit parameters. It is a phenomenological stand-in, not a circuit
// solution.
//
// ws follows SynchronousSpeedRPM (120·f/poles), 188.5 rad/s at 60 Hz and
// 4 poles. Tools that take ns as 120·f/(poles/2) report twice that ws, and
// so twice the torque, for the same k1, k2 and f.
func (e *Engine) ComputeApproxCurve(a ApproxParameters) (Curve, error) {
	if err := a.validate(); err != nil {
		return Curve{}, err
	}

	poles := a.Poles
	if poles == 0 {
		poles = e.opts.ApproxPoleCount
	}
	ws := 2 * math.Pi / 60 * SynchronousSpeedRPM(a.Frequency, poles)

	grid := slipGrid(e.approxSampleCount(), e.opts.SlipEpsilon)
	samples := make([]sample, len(grid))
	for i, s := range grid {
		t := a.K1 * (1 - s) * ws / (a.K2 + s)
		if !finite(t) {
			return Curve{}, fmt.Errorf("%w: approximate torque at slip %g is %g", ErrSingularSample, s, t)
		}
		samples[i] = sample{slip: s, torque: t}
	}

	ordered := orderDescending(samples)
	rows := make([]TorqueRow, len(ordered))
	for i, smp := range ordered {
		s := smp.slip
		rows[i] = TorqueRow{
			Slip:                   s,
			Torque:                 smp.torque,
			Rth:                    approxRth,
			Xth:                    approxXth,
			RotorReactance:         approxRotorReactancePerSlip * s,
			RotorResistanceInverse: approxRotorResistanceInverse / s,
			K1:                     a.K1,
			RotorResistance:        approxRotorResistancePerSlip * s,
			K2:                     a.K2,
			Vth:                    approxVoltsPerHertz * a.Frequency,
			W:                      ws,
			Xe2:                    approxXe2,
		}
		if err := rows[i].checkFinite(); err != nil {
			return Curve{}, err
		}
	}

	return Curve{Rows: rows}, nil
}
