package geometry

import "math"

// Triangulation describes the virtual camera of a viewpoint and the distance
// of an object seen with a given disparity.
type Triangulation struct {
	Baseline  float64 // B_G, at the entrance pupil
	TiltAngle float64 // phi_G, in degrees
	Distance  float64 // Z, +Inf for zero disparity on an untilted camera
}

// Triangulate pairs the central viewpoint with the one Viewpoint pixels away
// and triangulates the object distance for Disparity.
func (p Params) Triangulate() (Triangulation, error) {
	pp, fs, pm, fU := p.PixelPitch, p.MicroFocalLength, p.MicroPitch, p.MainFocalLength
	bU := p.ImageDistance()

	s := pm
	uc := s*fs/p.ExitPupil + s
	u := uc + pp*p.Viewpoint

	m0 := -pp * p.Viewpoint / fs
	m1 := (s - u) / fs
	u0 := m0 * bU
	u1 := m1*bU + s
	q0 := (m0*fU - u0) / fU
	q1 := (m1*fU - u1) / fU

	// virtual camera position in object space
	x, err := intersect(q1, u1, q0, u0)
	if err != nil {
		return Triangulation{}, err
	}

	var t Triangulation
	t.TiltAngle = math.Atan(q0) * 180 / math.Pi
	t.Baseline = q0*x + u0

	pitch := (-q1*bU + t.Baseline) - (-q0*bU + t.Baseline)
	denom := p.Disparity*pitch - bU*math.Tan(t.TiltAngle*math.Pi/180)
	if denom == 0 {
		t.Distance = math.Inf(1)
	} else {
		t.Distance = t.Baseline * bU / denom
	}
	return t, nil
}
