package stitch

import (
	"image"
	"math/rand"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/abworrall/pano-stitch/pkg/features"
)

const matchColorSeed = 12345

// RenderMatches puts A and B side by side, and joins each matched pair
// of keypoints with a line, circling both ends. Each match gets its own
// colour, from a fixed seed so renders are repeatable.
func RenderMatches(a, b image.Image, matches []features.Match) image.Image {
	aB, bB := a.Bounds(), b.Bounds()
	h := aB.Dy()
	if bB.Dy() > h {
		h = bB.Dy()
	}

	dc := gg.NewContext(aB.Dx()+bB.Dx(), h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.DrawImage(a, -aB.Min.X, -aB.Min.Y)
	dc.DrawImage(b, aB.Dx()-bB.Min.X, -bB.Min.Y)

	rng := rand.New(rand.NewSource(matchColorSeed))
	dc.SetLineWidth(1)
	for _, m := range matches {
		c := colorful.Hsv(rng.Float64()*360, 0.5+rng.Float64()*0.5, 0.7+rng.Float64()*0.3)
		dc.SetRGB(c.R, c.G, c.B)

		x1, y1 := float64(m.A.Col), float64(m.A.Row)
		x2, y2 := float64(m.B.Col+aB.Dx()), float64(m.B.Row)

		dc.DrawCircle(x1, y1, 4)
		dc.Stroke()
		dc.DrawCircle(x2, y2, 4)
		dc.Stroke()
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	return dc.Image()
}

// DrawMatches renders the matches and saves them as a PNG.
func DrawMatches(a, b image.Image, matches []features.Match, outName string) error {
	return errors.Wrapf(WritePNG(RenderMatches(a, b, matches), outName), "DrawMatches")
}
