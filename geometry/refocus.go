package geometry

import "math"

const (
	MsgImageInsideFocal = "Image distance is smaller than focal length (fU>bU)."
	MsgSliceOutOfRange  = "Refocusing slice is out of range."
	MsgPlaneAtInfinity  = "Refocused object plane at infinity."
	MsgPlaneOutOfRange  = "Refocused object plane out of range."
)

// Refocus is the object side location of a refocused slice.
type Refocus struct {
	Distance     float64 // d_a
	FarBorder    float64 // d_a+
	NearBorder   float64 // d_a-
	DepthOfField float64
	Messages     []string
}

// ray is one chief ray through a micro lens together with the two rays through
// the borders of its pixel.
type ray struct {
	s, sU, sL float64 // micro lens position and borders
	m, mU, mL float64 // image side slopes
	u, uU, uL float64 // intersections with the main lens
	q, qU, qL float64 // object side slopes
}

func (p Params) trace(s, pixel, bU float64) ray {
	pp, fs, pm, fU := p.PixelPitch, p.MicroFocalLength, p.MicroPitch, p.MainFocalLength

	uc := s*fs/p.ExitPupil + s // micro image centre
	u := uc + pixel*pp

	r := ray{s: s, sU: s + pm/2, sL: s - pm/2}
	r.m = (s - u) / fs
	r.mU = (s - (u + pp/2)) / fs
	r.mL = (s - (u - pp/2)) / fs

	r.u = r.m*bU + s
	r.uU = r.mU*bU + r.sU
	r.uL = r.mL*bU + r.sL

	r.q = (r.m*fU - r.u) / fU
	r.qU = (r.mU*fU - r.uU) / fU
	r.qL = (r.mL*fU - r.uL) / fU
	return r
}

// Refocus locates the plane brought into focus by shifting micro images by
// Shift and the borders of its depth of field.
func (p Params) Refocus() (Refocus, error) {
	var res Refocus
	fU, a, M := p.MainFocalLength, p.Shift, p.MicroImage
	bU := p.ImageDistance()

	if fU > bU {
		res.Messages = append(res.Messages, MsgImageInsideFocal)
	} else if a >= M {
		res.Messages = append(res.Messages, MsgSliceOutOfRange)
	}

	// pair the outermost pixels of two micro images as close to the axis as possible
	c := (M - 1) / 2
	j0 := -math.RoundToEven(a * (M - 1) / 2)
	j1 := a*(M-1) + j0
	r0 := p.trace(j0*p.MicroPitch, c, bU)
	r1 := p.trace(j1*p.MicroPitch, -c, bU)

	var err error
	behind := func(m0, b0, m1, b1 float64) float64 {
		x, e := intersect(m0, b0, m1, b1)
		if e != nil {
			err = e
		}
		return bU - x
	}
	object := func(m0, b0, m1, b1 float64) float64 {
		x, e := intersect(m0, b0, m1, b1)
		if e != nil {
			err = e
		}
		return x + bU + p.MainPrincipal
	}

	bNew := behind(r0.m, r0.s, r1.m, r1.s)
	bNear := behind(r0.mL, r0.sL, r1.mU, r1.sU)
	bFar := behind(r0.mU, r0.sU, r1.mL, r1.sL)
	if err != nil {
		return Refocus{}, err
	}

	near := func() float64 { return object(r0.qL, r0.uL, r1.qU, r1.uU) }
	far := func() float64 { return object(r0.qU, r0.uU, r1.qL, r1.uL) }
	inf := math.Inf(1)

	switch {
	case fU <= bU && a >= 0 && bNew > fU:
		res.Distance = object(r0.q, r0.u, r1.q, r1.u)
		res.FarBorder = far()
		res.NearBorder = near()
		if fU >= bFar {
			res.FarBorder = inf
		}
	case (fU == bU && a == 0) || bNew == fU:
		res.Messages = append(res.Messages, MsgPlaneAtInfinity)
		res.Distance = inf
		res.FarBorder = inf
		res.NearBorder = inf
		if fU < bNear {
			res.NearBorder = near()
		}
	case (fU >= bU && a <= 0) || bNew < fU:
		res.Messages = append(res.Messages, MsgPlaneOutOfRange)
		res.Distance = inf
		res.NearBorder = inf
		if fU < bNear {
			res.NearBorder = near()
		}
		res.FarBorder = inf
		if fU < bFar {
			res.FarBorder = far()
		}
	default:
		return Refocus{}, ErrNoSolution
	}
	if err != nil {
		return Refocus{}, err
	}

	res.DepthOfField = res.FarBorder - res.NearBorder
	if math.IsInf(res.FarBorder, 0) || math.IsInf(res.NearBorder, 0) {
		res.DepthOfField = inf
	}
	return res, nil
}
