package motor

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// slipGrid returns n evenly spaced slips over [0, 1] in ascending order.
// The s = 0 endpoint is clamped to eps since rr/s diverges there; the s = 1
// endpoint is pinned so standstill is hit exactly.
func slipGrid(n int, eps float64) []float64 {
	s := floats.Span(make([]float64, n), 0, 1)
	s[n-1] = 1
	if s[0] < eps {
		s[0] = eps
	}
	return s
}

// Thevenin computes the per-curve constants. Vth is the per-phase voltage
// as normalized, not a voltage-divider result.
func Thevenin(n NormalizedParameters) TheveninConstants {
	return TheveninConstants{
		Rth: n.RS / (n.XS + n.XR),
		Xth: n.XS + n.XM,
		K1:  n.XM / n.XS,
		K2:  n.XM / n.XR,
		Xe2: n.XM * n.XM / (n.XS + n.XM),
		Vth: n.PhaseVoltage,
		Ws:  n.SynchronousAngularSpeed,
	}
}

// Sweep evaluates the equivalent circuit over the slip grid and assembles
// the table in descending slip order.
func (e *Engine) Sweep(n NormalizedParameters) (Curve, error) {
	grid := slipGrid(e.SampleCount(), e.opts.SlipEpsilon)

	samples := make([]sample, len(grid))
	for i, s := range grid {
		t := e.torqueAt(n, s)
		if !finite(t) {
			return Curve{}, fmt.Errorf("%w: torque at slip %g is %g", ErrSingularSample, s, t)
		}
		samples[i] = sample{slip: s, torque: t}
	}

	th := Thevenin(n)
	ordered := orderDescending(samples)

	rows := make([]TorqueRow, len(ordered))
	for i, smp := range ordered {
		s := smp.slip
		rows[i] = TorqueRow{
			Slip:                   s,
			Torque:                 smp.torque,
			Rth:                    th.Rth,
			Xth:                    th.Xth,
			RotorReactance:         n.XR * s,
			RotorResistanceInverse: n.RR / s,
			K1:                     th.K1,
			RotorResistance:        n.RR * s,
			K2:                     th.K2,
			Vth:                    th.Vth,
			W:                      th.Ws,
			Xe2:                    th.Xe2,
		}
		if err := rows[i].checkFinite(); err != nil {
			return Curve{}, err
		}
	}

	summary := &Summary{
		StartingTorque:      e.convertedPower(n, 1) / n.SynchronousAngularSpeed,
		RatedPowerWatts:     n.RatedPowerWatts,
		SynchronousSpeedRPM: n.SynchronousSpeedRPM,
	}
	if !finite(summary.StartingTorque) {
		return Curve{}, fmt.Errorf("%w: starting torque is %g", ErrSingularSample, summary.StartingTorque)
	}
	for _, r := range rows {
		if r.Torque > summary.PeakTorque {
			summary.PeakTorque = r.Torque
			summary.PeakSlip = r.Slip
		}
	}

	return Curve{Rows: rows, Thevenin: &th, Summary: summary}, nil
}

// torqueAt is the electromagnetic torque at slip s. At standstill (s = 1)
// the rotor speed is zero and so is the mechanical power; the row reports
// zero torque there.
func (e *Engine) torqueAt(n NormalizedParameters, s float64) float64 {
	wr := (1 - s) * n.SynchronousAngularSpeed
	if wr == 0 {
		return 0
	}
	pmech := e.convertedPower(n, s) * (1 - s)
	return pmech / wr
}

// convertedPower is 3·|I|²·rr/s, I being the stator or the rotor-branch
// current depending on the power basis.
func (e *Engine) convertedPower(n NormalizedParameters, s float64) float64 {
	zm := complex(0, n.XM)
	zr := complex(n.RR/s, n.XR)
	zeq := complex(n.RS, n.XS) + zm*zr/(zm+zr)

	i := complex(n.PhaseVoltage, 0) / zeq
	if e.opts.PowerBasis == PowerBasisRotor {
		i = i * zm / (zm + zr)
	}

	mag := cmplx.Abs(i)
	return 3 * mag * mag * n.RR / s
}
