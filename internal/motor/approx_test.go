package motor

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeApproxCurve(t *testing.T) {
	e := newTestEngine(t, Options{})

	c, err := e.ComputeApproxCurve(ApproxParameters{K1: 2, K2: 0.5, Frequency: 60})
	require.NoError(t, err)
	require.Len(t, c.Rows, CircuitSampleCount)
	assert.Nil(t, c.Thevenin)

	ws := 2 * math.Pi * 1800 / 60
	assert.Equal(t, 1.0, c.Rows[0].Slip)
	assert.Equal(t, 0.0, c.Rows[0].Torque)

	last := c.Rows[len(c.Rows)-1]
	assert.InDelta(t, 2*ws/0.5, last.Torque, 1e-2)

	for i, r := range c.Rows {
		if i > 0 {
			assert.LessOrEqual(t, r.Slip, c.Rows[i-1].Slip)
		}
		assert.InDelta(t, 2*(1-r.Slip)*ws/(0.5+r.Slip), r.Torque, 1e-9)

		assert.Equal(t, 0.1, r.Rth)
		assert.Equal(t, 0.2, r.Xth)
		assert.Equal(t, 0.6, r.Xe2)
		assert.Equal(t, 220.0*60, r.Vth)
		assert.Equal(t, 2.0, r.K1)
		assert.Equal(t, 0.5, r.K2)
		assert.InDelta(t, ws, r.W, 1e-9)
		assert.InDelta(t, 0.3*r.Slip, r.RotorReactance, 1e-12)
		assert.InDelta(t, 0.5*r.Slip, r.RotorResistance, 1e-12)
		assert.False(t, math.IsInf(r.RotorResistanceInverse, 0))
	}
}

func TestComputeApproxCurvePoleCount(t *testing.T) {
	fixed := newTestEngine(t, Options{})
	twoPole := newTestEngine(t, Options{ApproxPoleCount: 2})

	a := ApproxParameters{K1: 1, K2: 1, Frequency: 50}

	c4, err := fixed.ComputeApproxCurve(a)
	require.NoError(t, err)
	c2, err := twoPole.ComputeApproxCurve(a)
	require.NoError(t, err)
	assert.InDelta(t, 2*c4.Rows[0].W, c2.Rows[0].W, 1e-9)

	a.Poles = 2
	explicit, err := fixed.ComputeApproxCurve(a)
	require.NoError(t, err)
	assert.Equal(t, c2.Rows[0].W, explicit.Rows[0].W)
}

func TestComputeApproxCurveZeroK2IsClamped(t *testing.T) {
	e := newTestEngine(t, Options{})

	c, err := e.ComputeApproxCurve(ApproxParameters{K1: 1, K2: 0, Frequency: 60})
	require.NoError(t, err)

	last := c.Rows[len(c.Rows)-1]
	assert.False(t, math.IsInf(last.Torque, 0) || math.IsNaN(last.Torque))
}

func TestComputeApproxCurveRejectsInvalid(t *testing.T) {
	e := newTestEngine(t, Options{})

	tests := []struct {
		name  string
		in    ApproxParameters
		field string
	}{
		{name: "zero frequency", in: ApproxParameters{K1: 1, K2: 1}, field: "f"},
		{name: "negative k2", in: ApproxParameters{K1: 1, K2: -1, Frequency: 60}, field: "k2"},
		{name: "nan k1", in: ApproxParameters{K1: math.NaN(), K2: 1, Frequency: 60}, field: "k1"},
		{name: "odd poles", in: ApproxParameters{K1: 1, K2: 1, Frequency: 60, Poles: 3}, field: "polos"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.ComputeApproxCurve(tc.in)
			require.Error(t, err)

			var pe *ParameterError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.field, pe.Field)
		})
	}
}

// The coefficient path fed with the circuit's own k1, k2 and frequency
// keeps the same qualitative shape, not the same values.
func TestApproxCurveMatchesCircuitCoefficients(t *testing.T) {
	e := newTestEngine(t, Options{})

	p := exampleParameters()
	circuit, err := e.ComputeCurve(p)
	require.NoError(t, err)

	assert.InDelta(t, 3.5/p.XS, circuit.Thevenin.K1, 1e-12)
	assert.InDelta(t, 3.5/p.XR, circuit.Thevenin.K2, 1e-12)

	approx, err := e.ComputeApproxCurve(ApproxParameters{
		K1:        circuit.Thevenin.K1,
		K2:        circuit.Thevenin.K2,
		Frequency: p.Frequency,
	})
	require.NoError(t, err)

	require.Len(t, approx.Rows, len(circuit.Rows))
	assert.Equal(t, circuit.Rows[0].K1, approx.Rows[0].K1)
	assert.Equal(t, circuit.Rows[0].K2, approx.Rows[0].K2)
	assert.InDelta(t, circuit.Rows[0].W, approx.Rows[0].W, 1e-9)

	assert.True(t, singlePeak(ascendingTorque(circuit)))
	assert.True(t, singlePeak(ascendingTorque(approx)))
	assert.Equal(t, 0.0, approx.Rows[0].Torque)
	assert.Equal(t, 0.0, circuit.Rows[0].Torque)
}

func TestComputeApproxCurveUsesCircuitSynchronousSpeed(t *testing.T) {
	e := newTestEngine(t, Options{})

	c, err := e.ComputeApproxCurve(DefaultApproxParameters())
	require.NoError(t, err)

	// 1800 rpm at 60 Hz and 4 poles, the same ns the circuit path uses.
	ws := 2 * math.Pi * SynchronousSpeedRPM(60, 4) / 60
	assert.InDelta(t, 188.4956, ws, 1e-4)
	for _, r := range c.Rows {
		assert.InDelta(t, ws, r.W, 1e-9)
	}

	// With k1 = k2 = 1 the torque is ws·(1-s)/(1+s): ws/3 at s = 0.5.
	for _, r := range c.Rows {
		assert.InDelta(t, ws*(1-r.Slip)/(1+r.Slip), r.Torque, 1e-9*ws)
	}
}
