package stitch

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/pkg/errors"

	"github.com/abworrall/pano-stitch/pkg/emath"
)

// Panorama is the composited canvas. Image A sits at Offset; H is the
// homography that was used to bring in image B.
type Panorama struct {
	*image.RGBA64
	Offset image.Point
	H      emath.Homography
}

func (p *Panorama) String() string {
	return fmt.Sprintf("Panorama %dx%d, A at %s", p.Bounds().Dx(), p.Bounds().Dy(), p.Offset)
}

// HDR returns a linear light view of the canvas, for the tonemappers
// and the RGBE encoder.
func (p *Panorama) HDR() hdr.Image {
	return hdrView{p.RGBA64}
}

// hdrView implements hdr.Image over an RGBA64 canvas, undoing the sRGB
// gamma curve.
type hdrView struct {
	*image.RGBA64
}

func (v hdrView) ColorModel() color.Model { return hdrcolor.RGBModel }
func (v hdrView) At(x, y int) color.Color { return v.HDRAt(x, y) }
func (v hdrView) Size() int               { return v.Bounds().Dx() * v.Bounds().Dy() }

func (v hdrView) HDRAt(x, y int) hdrcolor.Color {
	c := v.RGBA64At(x, y)
	return hdrcolor.RGB{
		R: emath.GammaCompress_F64(float64(c.R) / 0xffff),
		G: emath.GammaCompress_F64(float64(c.G) / 0xffff),
		B: emath.GammaCompress_F64(float64(c.B) / 0xffff),
	}
}

// WriteToHDR outputs a Radiance RGBE image of the canvas.
func (p *Panorama) WriteToHDR(filename string) error {
	writer, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Panorama.WriteToHDR, open+w '%s'", filename)
	}
	defer writer.Close()

	return errors.Wrapf(rgbe.Encode(writer, p.HDR()), "Panorama.WriteToHDR, encoding '%s'", filename)
}
