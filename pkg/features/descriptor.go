package features

import (
	"fmt"
	"math"

	"github.com/edaniels/golog"
)

const (
	DescriptorWindow = 16
	DescriptorMid    = DescriptorWindow / 2

	cellSize  = 4
	numCells  = (DescriptorWindow / cellSize) * (DescriptorWindow / cellSize)
	numBins   = 8
	binDegree = 360.0 / numBins

	// Each sample adds at most this much to its bin
	MagnitudeCap = 0.2
)

// A Descriptor is a 4x4 grid of 8-bin gradient orientation
// histograms, built from the 16x16 window of gradients around a
// keypoint. All fields are arrays, so a copy shares nothing with the
// original.
type Descriptor struct {
	Keypoint
	WindowX [DescriptorWindow][DescriptorWindow]float64
	WindowY [DescriptorWindow][DescriptorWindow]float64
	Bins    [numCells][numBins]float64
}

func (d Descriptor) String() string {
	total := 0.0
	for _, cell := range d.Bins {
		for _, v := range cell {
			total += v
		}
	}
	return fmt.Sprintf("desc[%s, mass %.3f]", d.Keypoint, total)
}

// windowFits reports whether the keypoint's window lies inside the field.
func windowFits(gf GradientField, kp Keypoint) bool {
	return kp.Row-DescriptorMid >= 0 && kp.Col-DescriptorMid >= 0 &&
		kp.Row+DescriptorMid-1 < gf.Dy() && kp.Col+DescriptorMid-1 < gf.Dx()
}

// NewDescriptor copies the window running from kp-8 to kp+7 on both
// axes out of the gradient field, then builds the histograms. The
// window must lie inside the field.
func NewDescriptor(gf GradientField, kp Keypoint) Descriptor {
	d := Descriptor{Keypoint: kp}
	for r := 0; r < DescriptorWindow; r++ {
		for c := 0; c < DescriptorWindow; c++ {
			y := kp.Row - DescriptorMid + r
			x := kp.Col - DescriptorMid + c
			d.WindowX[r][c] = gf.Ix.Get(x, y)
			d.WindowY[r][c] = gf.Iy.Get(x, y)
		}
	}
	d.generateHistograms()
	return d
}

// orientationDegrees is atan2(y,x) in degrees, in [0,360).
func orientationDegrees(x, y float64) float64 {
	a := math.Atan2(y, x) * 180.0 / math.Pi
	if a < 0 {
		a += 360.0
	}
	if a >= 360.0 {
		a = 0.0
	}
	return a
}

func orientationBin(deg float64) int {
	bin := int(deg / binDegree)
	if bin >= numBins {
		bin = numBins - 1
	}
	return bin
}

func (d *Descriptor) generateHistograms() {
	d.Bins = [numCells][numBins]float64{}

	for r := 0; r < DescriptorWindow; r++ {
		for c := 0; c < DescriptorWindow; c++ {
			x, y := d.WindowX[r][c], d.WindowY[r][c]

			cell := (r/cellSize)*(DescriptorWindow/cellSize) + c/cellSize
			bin := orientationBin(orientationDegrees(x, y))
			d.Bins[cell][bin] += math.Min(math.Sqrt(x*x+y*y), MagnitudeCap)
		}
	}
}

// DescribeKeypoints returns a fresh slice holding one descriptor per
// keypoint, in keypoint order. SuppressNonMaxima keeps keypoints at
// least window/2 from every edge, and DetectConfig.Validate requires
// window/2 >= DescriptorMid, so its keypoints always have a full
// window. Keypoints from elsewhere that do not are dropped with a
// warning.
func DescribeKeypoints(gf GradientField, kps []Keypoint, logger golog.Logger) []Descriptor {
	descs := make([]Descriptor, 0, len(kps))
	for _, kp := range kps {
		if !windowFits(gf, kp) {
			logger.Warnf("keypoint %s too close to the edge of a %dx%d image, skipping", kp, gf.Dx(), gf.Dy())
			continue
		}
		descs = append(descs, NewDescriptor(gf, kp))
	}
	return descs
}
