package torque

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"induction-torque/internal/motor"
)

const maxBodyBytes = 1 << 20

var errDecode = errors.New("decode request body")

// decodeMotorParameters reads the parameters from a JSON body or, for
// HTML forms, from the form fields named after the JSON keys.
func decodeMotorParameters(w http.ResponseWriter, r *http.Request) (motor.MotorParameters, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isForm(r) {
		return parseForm(r)
	}

	var p motor.MotorParameters
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return motor.MotorParameters{}, fmt.Errorf("%w: %w", errDecode, err)
	}
	return p, nil
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

func parseForm(r *http.Request) (motor.MotorParameters, error) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return motor.MotorParameters{}, fmt.Errorf("%w: %w", errDecode, err)
	}

	f := formReader{r: r}
	p := motor.MotorParameters{
		RS:           f.decimal("rs", true),
		XS:           f.decimal("xs", true),
		RR:           f.decimal("rr", true),
		XR:           f.decimal("xr", true),
		XM:           f.decimal("xm", false),
		LineVoltage:  f.decimal("V", true),
		RatedPowerCV: f.decimal("P", true),
		RatedCurrent: f.integer("I", true),
		Frequency:    f.decimal("f", true),
		Poles:        f.integer("polos", true),
		Efficiency:   f.decimal("rend", false),
		Connection:   motor.Connection(f.text("conexao", true)),
	}
	if f.err != nil {
		return motor.MotorParameters{}, f.err
	}
	return p, nil
}

// formReader keeps the first field error so the fields read top to bottom.
type formReader struct {
	r   *http.Request
	err error
}

func (f *formReader) text(key string, required bool) string {
	v := strings.TrimSpace(f.r.FormValue(key))
	if v == "" && required && f.err == nil {
		f.err = &motor.ParameterError{Field: key, Reason: "missing"}
	}
	return v
}

func (f *formReader) decimal(key string, required bool) float64 {
	v := f.text(key, required)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil && f.err == nil {
		f.err = &motor.ParameterError{Field: key, Reason: fmt.Sprintf("not a number: %q", v)}
	}
	return n
}

func (f *formReader) integer(key string, required bool) int {
	v := f.text(key, required)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil && f.err == nil {
		f.err = &motor.ParameterError{Field: key, Reason: fmt.Sprintf("not an integer: %q", v)}
	}
	return n
}
