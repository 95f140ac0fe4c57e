package motor

import "fmt"

// Variant selects one of the two slip-sweep input shapes.
type Variant string

const (
	// VariantCircuit samples 100 points and derives xm from the rated
	// current when it is not supplied.
	VariantCircuit Variant = "circuit"
	// VariantLegacy samples 20 points and requires xm directly.
	VariantLegacy Variant = "legacy"
)

// PowerBasis selects which current drives the converted-power term.
type PowerBasis string

const (
	// PowerBasisRotor uses the rotor-branch current Is·Zm/(Zm+Zr).
	PowerBasisRotor PowerBasis = "rotor"
	// PowerBasisStator uses the stator current Is.
	PowerBasisStator PowerBasis = "stator"
)

const (
	CircuitSampleCount     = 100
	LegacySampleCount      = 20
	DefaultSlipEpsilon     = 1e-6
	DefaultApproxPoleCount = 4
)

// Options configure an Engine. Zero values take the defaults above.
type Options struct {
	Variant         Variant
	SampleCount     int
	SlipEpsilon     float64
	PowerBasis      PowerBasis
	ApproxPoleCount int
}

// Engine evaluates torque-slip curves. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine fills in defaults and validates opts.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Variant == "" {
		opts.Variant = VariantCircuit
	}
	if opts.PowerBasis == "" {
		opts.PowerBasis = PowerBasisRotor
	}
	if opts.SlipEpsilon == 0 {
		opts.SlipEpsilon = DefaultSlipEpsilon
	}
	if opts.ApproxPoleCount == 0 {
		opts.ApproxPoleCount = DefaultApproxPoleCount
	}

	switch opts.Variant {
	case VariantCircuit, VariantLegacy:
	default:
		return nil, fmt.Errorf("unknown engine variant %q", opts.Variant)
	}
	switch opts.PowerBasis {
	case PowerBasisRotor, PowerBasisStator:
	default:
		return nil, fmt.Errorf("unknown power basis %q", opts.PowerBasis)
	}
	if opts.SlipEpsilon < 0 || opts.SlipEpsilon >= 0.5 {
		return nil, fmt.Errorf("slip epsilon must be in (0, 0.5), got %g", opts.SlipEpsilon)
	}
	if opts.SampleCount != 0 && opts.SampleCount < 2 {
		return nil, invalid("sample_count", "must be >= 2, got %d", opts.SampleCount)
	}
	if err := validatePoles(opts.ApproxPoleCount); err != nil {
		return nil, fmt.Errorf("approximate pole count: %w", err)
	}

	e := &Engine{opts: opts}

	// The clamped s = 0 sample must stay below its neighbour on the finer
	// of the two grids, or it would sort into the middle of the table.
	step := 1 / float64(max(e.SampleCount(), e.approxSampleCount())-1)
	if opts.SlipEpsilon >= step {
		return nil, invalid("slip_epsilon", "must be below the slip step %g, got %g", step, opts.SlipEpsilon)
	}

	return e, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// SampleCount is the number of rows ComputeCurve emits.
func (e *Engine) SampleCount() int {
	if e.opts.SampleCount != 0 {
		return e.opts.SampleCount
	}
	if e.opts.Variant == VariantLegacy {
		return LegacySampleCount
	}
	return CircuitSampleCount
}

// approxSampleCount is the grid of the coefficient path. It follows an
// explicit SampleCount but ignores the legacy default.
func (e *Engine) approxSampleCount() int {
	if e.opts.SampleCount != 0 {
		return e.opts.SampleCount
	}
	return CircuitSampleCount
}

// ComputeCurve normalizes p and sweeps slip over [0, 1].
func (e *Engine) ComputeCurve(p MotorParameters) (Curve, error) {
	if e.opts.Variant == VariantLegacy && p.XM <= 0 {
		return Curve{}, invalid("xm", "the legacy variant takes the magnetizing reactance directly")
	}

	n, err := Normalize(p)
	if err != nil {
		return Curve{}, err
	}

	return e.Sweep(n)
}
