package emath

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDegenerateSample is returned when a set of point pairs does not
	// determine a projective transform (duplicates, collinear points, a
	// singular system).
	ErrDegenerateSample = errors.New("degenerate sample")

	// ErrPointAtInfinity is returned when a projection's homogeneous w
	// coordinate is zero, or close enough to it.
	ErrPointAtInfinity = errors.New("point projects to infinity")
)

// wEpsilon guards the perspective divide.
const wEpsilon = 1e-12

// A Homography is a 3x3 projective transform, row-major, acting on
// (x,y,1) column vectors.
type Homography Mat3

func IdentityHomography() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func (h Homography) String() string { return Mat3(h).String() }

// Mult composes two homographies; (h1.Mult(h2)) applies h2 first.
func (h Homography) Mult(h2 Homography) Homography {
	return Homography(Mat3(h).Mult(Mat3(h2)))
}

// Project maps p through h, dividing by the homogeneous coordinate.
func (h Homography) Project(p r2.Point) (r2.Point, error) {
	v := Mat3(h).Apply(Vec3{p.X, p.Y, 1})
	if math.Abs(v[2]) < wEpsilon || math.IsNaN(v[2]) {
		return r2.Point{}, ErrPointAtInfinity
	}
	return r2.Point{X: v[0] / v[2], Y: v[1] / v[2]}, nil
}

// Normalized rescales h so its bottom right element is 1, if it can.
func (h Homography) Normalized() Homography {
	if math.Abs(h[8]) < wEpsilon {
		return h
	}
	s := 1.0 / h[8]
	for i := range h {
		h[i] *= s
	}
	return h
}

func (h Homography) IsFinite() bool {
	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (h Homography) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], h[8]})
}

// Inverse returns the inverse transform.
func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.dense()); err != nil {
		return Homography{}, errors.Wrap(ErrDegenerateSample, err.Error())
	}

	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[3*r+c] = inv.At(r, c)
		}
	}
	if !out.IsFinite() {
		return Homography{}, errors.Wrap(ErrDegenerateSample, "inverse not finite")
	}
	return out.Normalized(), nil
}

// FitHomography fits the transform mapping src[i] to dst[i]. Four pairs
// give an exact solution, more give a least squares one. h22 is fixed
// at 1 and the points are normalized first (centroid at the origin,
// mean distance sqrt(2)) to keep the system well conditioned.
func FitHomography(src, dst []r2.Point) (Homography, error) {
	if len(src) != len(dst) {
		return Homography{}, errors.Errorf("FitHomography: %d src points but %d dst points", len(src), len(dst))
	}
	n := len(src)
	if n < 4 {
		return Homography{}, errors.Wrapf(ErrDegenerateSample, "need 4 point pairs, have %d", n)
	}

	t1, nsrc, err := normalizePoints(src)
	if err != nil {
		return Homography{}, err
	}
	t2, ndst, err := normalizePoints(dst)
	if err != nil {
		return Homography{}, err
	}

	if n == 4 && (hasCollinearTriple(nsrc) || hasCollinearTriple(ndst)) {
		return Homography{}, errors.Wrap(ErrDegenerateSample, "collinear points")
	}

	a := mat.NewDense(2*n, 8, nil)
	b := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		x, y := nsrc[i].X, nsrc[i].Y
		u, v := ndst[i].X, ndst[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var sol mat.VecDense
	if n == 4 {
		err = sol.SolveVec(a, b)
	} else {
		var qr mat.QR
		qr.Factorize(a)
		err = qr.SolveVecTo(&sol, false, b)
	}
	if err != nil {
		return Homography{}, errors.Wrap(ErrDegenerateSample, err.Error())
	}

	hn := Homography{
		sol.AtVec(0), sol.AtVec(1), sol.AtVec(2),
		sol.AtVec(3), sol.AtVec(4), sol.AtVec(5),
		sol.AtVec(6), sol.AtVec(7), 1,
	}

	t2inv, err := t2.Inverse()
	if err != nil {
		return Homography{}, err
	}
	h := t2inv.Mult(hn).Mult(t1)
	if math.Abs(h[8]) < wEpsilon || !h.IsFinite() {
		return Homography{}, errors.Wrap(ErrDegenerateSample, "fitted transform is singular")
	}
	h = h.Normalized()

	if det := Mat3Det(Mat3(h)); math.Abs(det) < 1e-12 {
		return Homography{}, errors.Wrapf(ErrDegenerateSample, "fitted transform has det %g", det)
	}
	return h, nil
}

// normalizePoints returns the similarity transform that moves the
// centroid of pts to the origin and scales their mean distance from it
// to sqrt(2), along with the transformed points.
func normalizePoints(pts []r2.Point) (Homography, []r2.Point, error) {
	var c r2.Point
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Mul(1.0 / float64(len(pts)))

	meanDist := 0.0
	for _, p := range pts {
		meanDist += p.Sub(c).Norm()
	}
	meanDist /= float64(len(pts))
	if meanDist < wEpsilon {
		return Homography{}, nil, errors.Wrap(ErrDegenerateSample, "all points coincide")
	}

	s := math.Sqrt2 / meanDist
	t := Homography(Identity().Scale(s).Translate(-c.X, -c.Y).ToMat3())

	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Sub(c).Mul(s)
	}
	return t, out, nil
}

func hasCollinearTriple(pts []r2.Point) bool {
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			for k := j + 1; k < len(pts); k++ {
				if math.Abs(pts[j].Sub(pts[i]).Cross(pts[k].Sub(pts[i]))) < 1e-9 {
					return true
				}
			}
		}
	}
	return false
}

func Mat3Det(m Mat3) float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}
