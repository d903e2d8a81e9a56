package features

import (
	"fmt"
	"image"

	"github.com/golang/geo/r2"

	"github.com/abworrall/pano-stitch/pkg/emath"
)

const DefaultSuppressionWindow = 27

// A Keypoint is a pixel location, as (row, col).
type Keypoint struct {
	Row int
	Col int
}

func (kp Keypoint) String() string { return fmt.Sprintf("kp(r%d,c%d)", kp.Row, kp.Col) }

// Point returns the keypoint in (x,y) pixel coords.
func (kp Keypoint) Point() r2.Point { return r2.Point{X: float64(kp.Col), Y: float64(kp.Row)} }

func (kp Keypoint) ImagePoint() image.Point { return image.Point{X: kp.Col, Y: kp.Row} }

// SuppressNonMaxima tiles the response map with non-overlapping
// window x window squares and keeps the largest positive value in
// each. Tiles are centred at window/2, window/2 + window, ... and any
// tile that would reach past the image edge is skipped. Each tile's
// scan is clipped to the interior, so nothing within window/2 of an
// edge becomes a keypoint. Ties keep the first pixel in row-major
// order. window must be odd.
func SuppressNonMaxima(resp emath.FloatGrid, window int) []Keypoint {
	mid := window / 2
	kps := []Keypoint{}

	// Last row and column a keypoint may sit on
	lastRow, lastCol := resp.Dy()-1-mid, resp.Dx()-1-mid

	for row := mid; row < resp.Dy()-mid; row += window {
		for col := mid; col < resp.Dx()-mid; col += window {
			max := 0.0
			best := Keypoint{}

			for r := maxInt(row-mid, mid); r <= minInt(row+mid, lastRow); r++ {
				for c := maxInt(col-mid, mid); c <= minInt(col+mid, lastCol); c++ {
					if v := resp.Get(c, r); v > max {
						max = v
						best = Keypoint{Row: r, Col: c}
					}
				}
			}

			if max > 0 {
				kps = append(kps, best)
			}
		}
	}

	return kps
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
