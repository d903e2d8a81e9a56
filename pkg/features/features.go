package features

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/abworrall/pano-stitch/pkg/emath"
)

// DetectConfig contains the parameters for finding and describing
// keypoints in one image.
type DetectConfig struct {
	CornerThreshold   float64 `yaml:"corner_threshold"`
	SuppressionWindow int     `yaml:"suppression_window"` // odd, and >= 17 so descriptor windows fit
}

func DefaultDetectConfig() DetectConfig {
	return DetectConfig{
		CornerThreshold:   DefaultCornerThreshold,
		SuppressionWindow: DefaultSuppressionWindow,
	}
}

func (c DetectConfig) Validate() error {
	if c.SuppressionWindow%2 == 0 {
		return errors.Errorf("suppression_window %d must be odd", c.SuppressionWindow)
	}
	if c.SuppressionWindow/2 < DescriptorMid {
		return errors.Errorf("suppression_window %d must be at least %d", c.SuppressionWindow, 2*DescriptorMid+1)
	}
	if c.CornerThreshold < 0 {
		return errors.Errorf("corner_threshold %f must not be negative", c.CornerThreshold)
	}
	return nil
}

// Features holds every intermediate product of running detection on
// one image.
type Features struct {
	Gradients   GradientField
	Response    emath.FloatGrid
	Keypoints   []Keypoint
	Descriptors []Descriptor

	// Config is what the keypoints were detected with
	Config DetectConfig
}

// Extract runs gradients, corner response, suppression and
// description over a grayscale grid.
func Extract(gray emath.FloatGrid, cfg DetectConfig, logger golog.Logger) (Features, error) {
	if err := cfg.Validate(); err != nil {
		return Features{}, err
	}
	if gray.Dx() == 0 || gray.Dy() == 0 {
		return Features{}, errors.New("cannot extract features from an empty grid")
	}

	f := Features{Gradients: ComputeGradients(gray), Config: cfg}
	f.Response = CornerResponse(f.Gradients, cfg.CornerThreshold)
	f.Keypoints = SuppressNonMaxima(f.Response, cfg.SuppressionWindow)
	f.Descriptors = DescribeKeypoints(f.Gradients, f.Keypoints, logger)

	logger.Debugf("response %s", f.Response.Stats())
	logger.Infof("found %d keypoints, %d descriptors", len(f.Keypoints), len(f.Descriptors))
	return f, nil
}
