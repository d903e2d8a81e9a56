package stitch

import (
	"github.com/pkg/errors"

	"github.com/abworrall/pano-stitch/pkg/emath"
)

var (
	// ErrInvalidInput covers images that fail to load or have no area,
	// and bad configuration. The stitch cannot proceed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEstimationFailure means no usable homography was found, and so
	// there is nothing to composite.
	ErrEstimationFailure = errors.New("no homography found")

	// ErrDegenerateSample is returned for point sets that do not fix a
	// homography. RANSAC skips these and carries on.
	ErrDegenerateSample = emath.ErrDegenerateSample
)
