package stitch

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/abworrall/pano-stitch/pkg/emath"
	"github.com/abworrall/pano-stitch/pkg/features"
)

// CameraInfo is what we could find out about the camera from the EXIF
// data, if there was any.
type CameraInfo struct {
	Make        string
	Model       string
	FocalLength float64 // mm, 0 if unknown
	Taken       time.Time
}

func (ci CameraInfo) String() string {
	if ci.Model == "" {
		return "camera unknown"
	}
	return fmt.Sprintf("%s %s @%.1fmm, %s", ci.Make, ci.Model, ci.FocalLength, ci.Taken.Format(time.RFC3339))
}

// A Layer holds an image.Image loaded from an input file, with the
// stuff we work out about it on the way to stitching.
type Layer struct {
	LoadFilename string
	CameraInfo

	Gray emath.FloatGrid // Luminance, scaled to [0,1]
	features.Features

	image.Image
}

// NewLayer wraps an already decoded image.
func NewLayer(name string, img image.Image) (Layer, error) {
	l := Layer{LoadFilename: name, Image: img}
	gray, err := emath.NewFloatGridFromImage(img)
	if err != nil {
		return l, errors.Wrapf(ErrInvalidInput, "%s: %v", name, err)
	}
	l.Gray = gray
	return l, nil
}

func (l Layer) String() string {
	return fmt.Sprintf("%s: %dx%d, %s, %d keypoints, %d descriptors",
		l.Filename(), l.Bounds().Dx(), l.Bounds().Dy(), l.CameraInfo, len(l.Keypoints), len(l.Descriptors))
}

func (l Layer) Filename() string {
	return filepath.Base(l.LoadFilename)
}
