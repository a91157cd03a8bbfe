// Package geometry computes the light field geometry of a standard plenoptic
// camera: where a refocused image slice lies in object space, its depth of
// field, and the distance triangulated from a disparity between two viewpoints.
//
// All lengths are in millimetres.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrParallelRays = errors.New("rays do not intersect")
	ErrNoSolution   = errors.New("refocused plane could not be located")
)

// Params describes the camera and what to compute from it.
type Params struct {
	PixelPitch       float64 // pp
	MicroFocalLength float64 // fs
	MicroPrincipal   float64 // hh, principal plane spacing of a micro lens
	MicroPitch       float64 // pm
	ExitPupil        float64 // dA, exit pupil distance
	MainFocalLength  float64 // fU
	MainPrincipal    float64 // HH, principal plane spacing of the main lens
	FocusDistance    float64 // df, +Inf when focused at infinity
	Shift            float64 // a, refocusing shift
	MicroImage       float64 // M, micro image diameter in pixels
	Viewpoint        float64 // i, viewpoint gap in pixels
	Disparity        float64 // dx, in pixels
}

// Defaults returns the parameters used for any key a request leaves out.
func Defaults() Params {
	return Params{
		PixelPitch:       .009,
		MicroFocalLength: 2.75,
		MicroPrincipal:   .396,
		MicroPitch:       .125,
		ExitPupil:        111.0324,
		MainFocalLength:  193.2935,
		MainPrincipal:    -65.5563,
		FocusDistance:    math.Inf(1),
		Shift:            1,
		MicroImage:       13,
		Viewpoint:        -6,
		Disparity:        1,
	}
}

// FromValues overlays the keyed values on Defaults. Every present value must
// parse as a float; "inf" is accepted.
func FromValues(values map[string]string) (Params, error) {
	p := Defaults()
	fields := map[string]*float64{
		"pp": &p.PixelPitch,
		"fs": &p.MicroFocalLength,
		"hh": &p.MicroPrincipal,
		"pm": &p.MicroPitch,
		"dA": &p.ExitPupil,
		"fU": &p.MainFocalLength,
		"HH": &p.MainPrincipal,
		"df": &p.FocusDistance,
		"a":  &p.Shift,
		"M":  &p.MicroImage,
		"i":  &p.Viewpoint,
		"dx": &p.Disparity,
	}
	for key, dst := range fields {
		raw, ok := values[key]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Params{}, fmt.Errorf("could not convert %s=%q to float", key, raw)
		}
		*dst = v
	}
	return p, nil
}

// maxIterations bounds the image distance fixed point search.
const maxIterations = 1000

// ImageDistance is the paraxial image distance of the main lens for the focus
// distance. It is the focal length for focus at infinity and +Inf when the
// focus distance lies inside the focal length.
func (p Params) ImageDistance() float64 {
	fU, hh, df := p.MainFocalLength, p.MainPrincipal, p.FocusDistance
	switch {
	case math.IsInf(df, 1):
		return fU
	case df <= fU:
		return math.Inf(1)
	}
	bU := fU
	aU := df - fU - hh
	for n := 0; n < maxIterations; n++ {
		next := 1 / (1/fU - 1/aU)
		if next == bU {
			break
		}
		bU = next
		aU = df - bU - hh
	}
	return bU
}

// intersect returns the abscissa where the lines y = m0*x + b0 and
// y = m1*x + b1 cross.
func intersect(m0, b0, m1, b1 float64) (float64, error) {
	if m0 == m1 {
		return 0, ErrParallelRays
	}
	return (b0 - b1) / (m1 - m0), nil
}

// Round4 rounds to the four decimals shown in results.
func Round4(v float64) float64 {
	r := math.Round(v*10000) / 10000
	if r == 0 {
		return 0
	}
	return r
}

// FormatLength renders a length with its unit, or "infinity".
func FormatLength(v float64) string {
	if math.IsInf(v, 0) {
		return "infinity"
	}
	return formatNumber(v) + " mm"
}

// FormatAngle renders an angle in degrees.
func FormatAngle(v float64) string {
	return formatNumber(v) + " deg"
}

// formatNumber always keeps a fractional part, so 4000 prints as 4000.0.
func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	s := strconv.FormatFloat(Round4(v), 'f', -1, 64)
	for _, c := range s {
		if c == '.' {
			return s
		}
	}
	return s + ".0"
}
