package stitch

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/abworrall/pano-stitch/pkg/emath"
)

// CanvasBounds works out the canvas needed to hold all of A plus all of
// B once B is pulled back into A's frame via the inverse of h. The
// result is in A's pixel coordinates, so Min is zero or negative, and
// Max is at least A's size.
func CanvasBounds(h emath.Homography, aSize, bSize image.Point) (image.Rectangle, error) {
	hInv, err := h.Inverse()
	if err != nil {
		return image.Rectangle{}, errors.Wrapf(ErrEstimationFailure, "homography not invertible: %v", err)
	}

	corners := []r2.Point{
		{X: 0, Y: 0},
		{X: float64(bSize.X), Y: 0},
		{X: 0, Y: float64(bSize.Y)},
		{X: float64(bSize.X), Y: float64(bSize.Y)},
	}

	var projected []r2.Point
	for _, c := range corners {
		p, err := hInv.Project(c)
		if err != nil {
			return image.Rectangle{}, errors.Wrapf(ErrEstimationFailure, "B corner %v: %v", c, err)
		}
		if !canvasCoord(p.X) || !canvasCoord(p.Y) {
			return image.Rectangle{}, errors.Wrapf(ErrEstimationFailure, "B corner %v lands at %v", c, p)
		}
		projected = append(projected, p)
	}
	bbox := r2.RectFromPoints(projected...)

	canvas := image.Rectangle{Max: aSize}
	if lo := emath.FloorInt(bbox.X.Lo); lo < 0 {
		canvas.Min.X = lo
	}
	if lo := emath.FloorInt(bbox.Y.Lo); lo < 0 {
		canvas.Min.Y = lo
	}
	if hi := emath.CeilInt(bbox.X.Hi); hi > aSize.X {
		canvas.Max.X = hi
	}
	if hi := emath.CeilInt(bbox.Y.Hi); hi > aSize.Y {
		canvas.Max.Y = hi
	}
	return canvas, nil
}

// maxCanvasCoord bounds how far from A a projected B corner may land
// before the homography is treated as degenerate.
const maxCanvasCoord = 1 << 30

func canvasCoord(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) <= maxCanvasCoord
}

// Composite places A unchanged on a canvas big enough for both images,
// then writes every canvas pixel whose projection through h lands
// inside B with B's nearest pixel. B overwrites A where they overlap.
func Composite(a, b image.Image, h emath.Homography, maxPixels int) (*Panorama, error) {
	aB, bB := a.Bounds(), b.Bounds()
	if aB.Empty() || bB.Empty() {
		return nil, errors.Wrapf(ErrInvalidInput, "cannot composite %s with %s", aB, bB)
	}

	frame, err := CanvasBounds(h, aB.Size(), bB.Size())
	if err != nil {
		return nil, err
	}
	w, ht := frame.Dx(), frame.Dy()
	if float64(w)*float64(ht) > float64(maxPixels) {
		return nil, errors.Wrapf(ErrEstimationFailure, "canvas %dx%d is over the %d pixel limit", w, ht, maxPixels)
	}

	left, top := -frame.Min.X, -frame.Min.Y
	pano := &Panorama{
		RGBA64: image.NewRGBA64(image.Rect(0, 0, w, ht)),
		Offset: image.Point{X: left, Y: top},
		H:      h,
	}

	// A goes in unscaled, shifted by (left,top)
	place := emath.Identity().Translate(float64(left-aB.Min.X), float64(top-aB.Min.Y))
	draw.NearestNeighbor.Transform(pano.RGBA64, f64.Aff3(place), a, aB, draw.Src, nil)

	// canvas pixel -> A frame -> B
	m := h.Mult(emath.Homography(emath.Identity().Translate(float64(-left), float64(-top)).ToMat3()))
	for cy := 0; cy < ht; cy++ {
		for cx := 0; cx < w; cx++ {
			p, err := m.Project(r2.Point{X: float64(cx), Y: float64(cy)})
			if err != nil {
				continue
			}
			bx, by := int(math.Floor(p.X+0.5)), int(math.Floor(p.Y+0.5))
			if bx < 0 || by < 0 || bx >= bB.Dx() || by >= bB.Dy() {
				continue
			}
			pano.Set(cx, cy, b.At(bB.Min.X+bx, bB.Min.Y+by))
		}
	}

	return pano, nil
}
