package features

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/abworrall/pano-stitch/pkg/emath"
)

// uniformField has the same gradient (x,y) at every pixel.
func uniformField(w, h int, x, y float64) GradientField {
	gf := GradientField{Ix: emath.NewFloatGrid(w, h), Iy: emath.NewFloatGrid(w, h)}
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			gf.Ix.Set(c, r, x)
			gf.Iy.Set(c, r, y)
		}
	}
	return gf
}

func binTotals(d Descriptor) [numBins]float64 {
	var totals [numBins]float64
	for _, cell := range d.Bins {
		for b, v := range cell {
			totals[b] += v
		}
	}
	return totals
}

func TestOrientationDegrees(t *testing.T) {
	test.That(t, orientationDegrees(1, 0), test.ShouldAlmostEqual, 0.0)
	test.That(t, orientationDegrees(0, 1), test.ShouldAlmostEqual, 90.0)
	test.That(t, orientationDegrees(-1, 0), test.ShouldAlmostEqual, 180.0)
	test.That(t, orientationDegrees(0, -1), test.ShouldAlmostEqual, 270.0)
	test.That(t, orientationDegrees(1, -1), test.ShouldAlmostEqual, 315.0)
	test.That(t, orientationDegrees(-1, -1), test.ShouldAlmostEqual, 225.0)
	test.That(t, orientationDegrees(0, 0), test.ShouldAlmostEqual, 0.0)

	for _, tc := range []struct {
		deg float64
		bin int
	}{
		{0, 0}, {44.9, 0}, {45, 1}, {90, 2}, {179.9, 3}, {180, 4}, {270, 6}, {315, 7}, {359.99, 7},
	} {
		test.That(t, orientationBin(tc.deg), test.ShouldEqual, tc.bin)
	}
}

func TestDescriptorQuadrants(t *testing.T) {
	kp := Keypoint{Row: 10, Col: 10}

	for _, tc := range []struct {
		x, y float64
		bin  int
	}{
		{0.1, 0.05, 0},   // ~26.6 deg
		{0.05, 0.1, 1},   // ~63.4 deg
		{-0.05, 0.1, 2},  // ~116.6 deg
		{-0.1, 0.05, 3},  // ~153.4 deg
		{-0.1, -0.05, 4}, // ~206.6 deg
		{-0.05, -0.1, 5}, // ~243.4 deg
		{0.05, -0.1, 6},  // ~296.6 deg
		{0.1, -0.05, 7},  // ~333.4 deg
	} {
		d := NewDescriptor(uniformField(20, 20, tc.x, tc.y), kp)
		totals := binTotals(d)
		for b, v := range totals {
			if b == tc.bin {
				test.That(t, v, test.ShouldBeGreaterThan, 0.0)
			} else {
				test.That(t, v, test.ShouldEqual, 0.0)
			}
		}
	}
}

func TestDescriptorMagnitudeCap(t *testing.T) {
	kp := Keypoint{Row: 8, Col: 8}

	// |(0.3,0.4)| = 0.5, capped at 0.2; 16 samples in each of the 16 cells
	d := NewDescriptor(uniformField(16, 16, 0.3, 0.4), kp)
	for _, cell := range d.Bins {
		test.That(t, cell[1], test.ShouldAlmostEqual, 16*MagnitudeCap)
	}

	// |(0.03,0.04)| = 0.05 is under the cap
	d = NewDescriptor(uniformField(16, 16, 0.03, 0.04), kp)
	for _, cell := range d.Bins {
		test.That(t, cell[1], test.ShouldAlmostEqual, 16*0.05)
	}
}

func TestDescriptorWindowAndCells(t *testing.T) {
	gf := uniformField(40, 40, 0, 0)
	kp := Keypoint{Row: 20, Col: 20}

	// One strong gradient at row kp-8+5, col kp-8+14 lands in window (5,14),
	// which is cell (5/4)*4 + 14/4 = 7
	gf.Ix.Set(20-8+14, 20-8+5, 0.1)
	// Row kp+8 is just outside the window
	gf.Ix.Set(20, 28, 0.1)

	d := NewDescriptor(gf, kp)
	test.That(t, d.WindowX[5][14], test.ShouldEqual, 0.1)
	test.That(t, d.Keypoint, test.ShouldResemble, kp)
	for cell := range d.Bins {
		if cell == 7 {
			test.That(t, d.Bins[cell][0], test.ShouldAlmostEqual, 0.1)
		} else {
			test.That(t, d.Bins[cell][0], test.ShouldEqual, 0.0)
		}
	}
}

func TestDescriptorIsAValue(t *testing.T) {
	d1 := NewDescriptor(uniformField(20, 20, 0.1, 0.0), Keypoint{Row: 10, Col: 10})
	d2 := d1
	d2.Bins[0][0] = 99
	d2.WindowX[0][0] = 99
	test.That(t, d1.Bins[0][0], test.ShouldNotEqual, 99.0)
	test.That(t, d1.WindowX[0][0], test.ShouldNotEqual, 99.0)
}

func TestDescribeKeypoints(t *testing.T) {
	gf := uniformField(30, 30, 0.1, 0.1)
	kps := []Keypoint{{Row: 8, Col: 8}, {Row: 7, Col: 15}, {Row: 22, Col: 22}, {Row: 23, Col: 22}}

	descs := DescribeKeypoints(gf, kps, golog.NewTestLogger(t))
	test.That(t, descs, test.ShouldHaveLength, 2)
	test.That(t, descs[0].Keypoint, test.ShouldResemble, kps[0])
	test.That(t, descs[1].Keypoint, test.ShouldResemble, kps[2])

	// Each call returns its own slice
	again := DescribeKeypoints(gf, kps[:1], golog.NewTestLogger(t))
	test.That(t, again, test.ShouldHaveLength, 1)
	test.That(t, descs, test.ShouldHaveLength, 2)
}
