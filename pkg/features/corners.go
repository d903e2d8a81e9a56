package features

import (
	"github.com/abworrall/pano-stitch/pkg/emath"
)

const (
	DefaultCornerThreshold = 0.008

	// The structure tensor products are smoothed by a 3x3 Gaussian
	structureTensorRadius = 1
	structureTensorSigma  = 1.0
)

// CornerResponse computes det/trace of the smoothed structure tensor
// at every pixel. This is not the textbook det - k*trace^2 Harris
// measure. Responses at or below threshold come back as 0, and so do
// pixels where the trace is 0.
func CornerResponse(gf GradientField, threshold float64) emath.FloatGrid {
	ixx := gf.Ix.Mul(gf.Ix)
	iyy := gf.Iy.Mul(gf.Iy)
	ixy := gf.Ix.Mul(gf.Iy)

	ixx = ixx.GaussianBlur(structureTensorRadius, structureTensorSigma)
	iyy = iyy.GaussianBlur(structureTensorRadius, structureTensorSigma)
	ixy = ixy.GaussianBlur(structureTensorRadius, structureTensorSigma)

	resp := ixx.NewFromThis()
	for y := 0; y < resp.Dy(); y++ {
		for x := 0; x < resp.Dx(); x++ {
			a, b, d := ixx.Get(x, y), ixy.Get(x, y), iyy.Get(x, y)

			trace := a + d
			if trace == 0.0 {
				continue
			}
			if r := (a*d - b*b) / trace; r > threshold {
				resp.Set(x, y, r)
			}
		}
	}

	return resp
}
