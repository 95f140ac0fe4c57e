package motor

import (
	"math"
	"strings"
)

const (
	// CVToWatts converts the "cavalo-vapor" rating to watts as the form expects it.
	CVToWatts = 0.7355

	// MagnetizingPerAmp estimates xm from the rated current when no measured
	// value is supplied. It is a fixed proportionality, not a derivation.
	MagnetizingPerAmp = 0.35
)

// Connection is the stator winding connection.
type Connection string

const (
	Delta Connection = "delta"
	Wye   Connection = "wye"
)

// ParseConnection accepts the English tags and the Portuguese form values
// ("triangulo", "estrela").
func ParseConnection(s string) (Connection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delta", "triangulo", "triângulo":
		return Delta, nil
	case "wye", "star", "estrela":
		return Wye, nil
	default:
		return "", invalid("connection", "unrecognized connection %q", s)
	}
}

// MotorParameters are the per-phase equivalent-circuit values of one request.
type MotorParameters struct {
	RS           float64    `json:"rs"`             // stator resistance (ohm)
	XS           float64    `json:"xs"`             // stator leakage reactance (ohm)
	RR           float64    `json:"rr"`             // rotor resistance referred to stator (ohm)
	XR           float64    `json:"xr"`             // rotor leakage reactance referred to stator (ohm)
	XM           float64    `json:"xm,omitempty"`   // magnetizing reactance (ohm), 0 derives it
	LineVoltage  float64    `json:"V"`              // line-to-line (V)
	RatedPowerCV float64    `json:"P"`              // rated output (CV)
	RatedCurrent int        `json:"I"`              // rated current (A)
	Frequency    float64    `json:"f"`              // supply frequency (Hz)
	Poles        int        `json:"polos"`          // pole count
	Efficiency   float64    `json:"rend,omitempty"` // informational only
	Connection   Connection `json:"conexao"`
}

// NormalizedParameters is everything the slip sweep needs.
type NormalizedParameters struct {
	RS, XS, RR, XR, XM      float64
	PhaseVoltage            float64
	SynchronousSpeedRPM     float64
	SynchronousAngularSpeed float64
	RatedPowerWatts         float64
}

// Normalize validates p and derives the sweep inputs. xm is estimated from
// the rated current only when p.XM is zero.
func Normalize(p MotorParameters) (NormalizedParameters, error) {
	if err := p.validate(); err != nil {
		return NormalizedParameters{}, err
	}

	conn, err := ParseConnection(string(p.Connection))
	if err != nil {
		return NormalizedParameters{}, err
	}

	v := p.LineVoltage
	if conn == Delta {
		v /= math.Sqrt(3)
	}

	xm := p.XM
	if xm == 0 {
		xm = float64(p.RatedCurrent) * MagnetizingPerAmp
	}
	if xm <= 0 {
		return NormalizedParameters{}, invalid("xm", "magnetizing reactance must be supplied or derivable from a rated current > 0")
	}

	ns := SynchronousSpeedRPM(p.Frequency, p.Poles)

	return NormalizedParameters{
		RS:                      p.RS,
		XS:                      p.XS,
		RR:                      p.RR,
		XR:                      p.XR,
		XM:                      xm,
		PhaseVoltage:            v,
		SynchronousSpeedRPM:     ns,
		SynchronousAngularSpeed: 2 * math.Pi * ns / 60,
		RatedPowerWatts:         p.RatedPowerCV * CVToWatts,
	}, nil
}

// SynchronousSpeedRPM is 120·f/p, i.e. 60·f per pole pair: 1800 rpm for a
// 4-pole 60 Hz machine.
func SynchronousSpeedRPM(frequency float64, poles int) float64 {
	return 120 * frequency / float64(poles)
}

func (p MotorParameters) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"rs", p.RS}, {"xs", p.XS}, {"rr", p.RR}, {"xr", p.XR}, {"xm", p.XM},
	} {
		if !finite(f.v) {
			return invalid(f.name, "must be a finite number")
		}
		if f.v < 0 {
			return invalid(f.name, "must be >= 0, got %g", f.v)
		}
	}

	// xs and xr divide the Thevenin ratios, rr divides every sample.
	if p.XS == 0 {
		return invalid("xs", "must be > 0")
	}
	if p.XR == 0 {
		return invalid("xr", "must be > 0")
	}
	if p.RR == 0 {
		return invalid("rr", "must be > 0")
	}

	if !finite(p.LineVoltage) || p.LineVoltage <= 0 {
		return invalid("V", "line voltage must be > 0, got %g", p.LineVoltage)
	}
	if !finite(p.RatedPowerCV) || p.RatedPowerCV <= 0 {
		return invalid("P", "rated power must be > 0, got %g", p.RatedPowerCV)
	}
	if p.RatedCurrent < 0 {
		return invalid("I", "rated current must be >= 0, got %d", p.RatedCurrent)
	}
	if !finite(p.Frequency) || p.Frequency <= 0 {
		return invalid("f", "frequency must be > 0, got %g", p.Frequency)
	}
	if err := validatePoles(p.Poles); err != nil {
		return err
	}
	if !finite(p.Efficiency) || p.Efficiency < 0 || p.Efficiency > 1 {
		return invalid("rend", "efficiency must be in (0,1], got %g", p.Efficiency)
	}
	return nil
}

func validatePoles(poles int) error {
	if poles <= 0 {
		return invalid("polos", "pole count must be > 0, got %d", poles)
	}
	if poles%2 != 0 {
		return invalid("polos", "pole count must be even, got %d", poles)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
