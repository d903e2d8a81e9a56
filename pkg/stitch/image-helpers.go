package stitch

// A few helper routines for golang's image libraries

import (
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

func WritePNG(img image.Image, filename string) error {
	writer, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "open+w '%s'", filename)
	}
	defer writer.Close()

	return errors.Wrapf(png.Encode(writer, img), "png encode '%s'", filename)
}

// WritePreview writes a copy of img scaled down to the given width,
// keeping the aspect ratio. Images already narrower are written as is.
func WritePreview(img image.Image, width uint, filename string) error {
	if width > 0 && uint(img.Bounds().Dx()) > width {
		img = resize.Resize(width, 0, img, resize.Lanczos3)
	}
	return WritePNG(img, filename)
}
