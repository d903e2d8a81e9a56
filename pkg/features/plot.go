package features

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

// PlotKeypoints draws a circle around each keypoint on top of img, and
// saves the result as a PNG.
func PlotKeypoints(img image.Image, kps []Keypoint, outName string) error {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)

	dc.SetRGBA(1, 0, 0, 0.8)
	dc.SetLineWidth(1.5)
	for _, kp := range kps {
		dc.DrawCircle(float64(kp.Col), float64(kp.Row), 4.0)
		dc.Stroke()
	}
	return errors.Wrapf(dc.SavePNG(outName), "PlotKeypoints '%s'", outName)
}
