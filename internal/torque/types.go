package torque

import (
	"encoding/json"
	"fmt"
	"strconv"

	"induction-torque/internal/motor"
)

// CurveResponse is the JSON response for POST /torque/curve.
type CurveResponse struct {
	Image     string                   `json:"img_str"` // base64 PNG
	TableData []motor.TorqueRow        `json:"table_data"`
	K1        float64                  `json:"k1"`
	K2        float64                  `json:"k2"`
	Frequency float64                  `json:"f"`
	Thevenin  *motor.TheveninConstants `json:"thevenin"`
	Summary   *motor.Summary           `json:"summary"`
}

// UpdateRequest is the JSON body for POST /torque/update. Absent fields
// keep the defaults k1=1, k2=1, f=60.
type UpdateRequest struct {
	K1        *number `json:"k1"`
	K2        *number `json:"k2"`
	Frequency *number `json:"f"`
	Poles     int     `json:"poles,omitempty"`
}

// Params merges the request over motor.DefaultApproxParameters.
func (u UpdateRequest) Params() motor.ApproxParameters {
	a := motor.DefaultApproxParameters()
	if u.K1 != nil {
		a.K1 = float64(*u.K1)
	}
	if u.K2 != nil {
		a.K2 = float64(*u.K2)
	}
	if u.Frequency != nil {
		a.Frequency = float64(*u.Frequency)
	}
	a.Poles = u.Poles
	return a
}

// UpdateResponse is the JSON response for POST /torque/update.
type UpdateResponse struct {
	Image     string            `json:"img_str"`
	TableData []motor.TorqueRow `json:"table_data"`
}

// ExportRequest is the JSON body for POST /torque/export.
type ExportRequest struct {
	TableData []motor.TorqueRow `json:"table_data"`
}

// number accepts a JSON number or a numeric string, as slider widgets
// tend to post "1.5" rather than 1.5.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*n = number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}
