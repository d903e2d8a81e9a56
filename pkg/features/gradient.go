// Package features finds corners in a grayscale image, describes them
// with gradient orientation histograms, and matches descriptors
// between two images.
package features

import (
	"github.com/abworrall/pano-stitch/pkg/emath"
)

// GradientBorder is the border policy used for the derivative kernels.
const GradientBorder = emath.BorderReplicate

// derivativeKernel is the [1,2,1]/6 column combined with a [1,0,-1]
// row; as a true convolution it gives I(x+1)-I(x-1), smoothed over
// three rows.
var derivativeKernel = emath.SeparableKernel(
	[]float64{1.0 / 6, 2.0 / 6, 1.0 / 6},
	[]float64{1, 0, -1},
)

// A GradientField holds the horizontal and vertical derivatives of an
// image; both grids have the image's dimensions.
type GradientField struct {
	Ix emath.FloatGrid
	Iy emath.FloatGrid
}

func (gf GradientField) Dx() int { return gf.Ix.Dx() }
func (gf GradientField) Dy() int { return gf.Ix.Dy() }

// ComputeGradients expects a grayscale grid scaled into [0,1].
func ComputeGradients(gray emath.FloatGrid) GradientField {
	return GradientField{
		Ix: gray.Convolve(derivativeKernel, GradientBorder),
		Iy: gray.Convolve(derivativeKernel.Transpose(), GradientBorder),
	}
}
