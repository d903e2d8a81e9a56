package stitch

import (
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/abworrall/pano-stitch/pkg/features"
)

// Stitcher runs the whole pipeline over a pair of layers.
type Stitcher struct {
	Config
	logger golog.Logger
}

// Result holds everything a stitch produced, for output and debugging.
type Result struct {
	A, B     *Layer
	Matches  []features.Match
	Estimate Estimate
	Panorama *Panorama
}

func (r Result) String() string {
	return fmt.Sprintf("%s + %s: %d matches, %d inliers, %s",
		r.A.Filename(), r.B.Filename(), len(r.Matches), r.Estimate.InlierCount, r.Panorama)
}

func NewStitcher(cfg Config, logger golog.Logger) (*Stitcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Stitcher{Config: cfg, logger: logger}, nil
}

// DetectFeatures finds keypoints and descriptors for the layer, unless
// it already has them.
func (s *Stitcher) DetectFeatures(l *Layer) error {
	if l.Gradients.Dx() > 0 && l.Features.Config == s.Detect {
		return nil
	}

	f, err := features.Extract(l.Gray, s.Detect, s.logger)
	if err != nil {
		return errors.Wrapf(ErrInvalidInput, "%s: %v", l.Filename(), err)
	}
	l.Features = f
	s.logger.Infof("features: %s", l)

	if s.Verbosity > 0 {
		s.dumpFeatures(l)
	}
	return nil
}

// Stitch maps b onto a's frame. a is the reference image and is copied
// onto the canvas unchanged.
func (s *Stitcher) Stitch(a, b *Layer) (*Result, error) {
	if a.FocalLength > 0 && b.FocalLength > 0 && a.FocalLength != b.FocalLength {
		s.logger.Warnf("focal lengths differ (%.1fmm vs %.1fmm), a planar homography may not fit well",
			a.FocalLength, b.FocalLength)
	}

	for _, l := range []*Layer{a, b} {
		if err := s.DetectFeatures(l); err != nil {
			return nil, err
		}
	}

	r := &Result{A: a, B: b}
	r.Matches = features.MatchDescriptors(a.Descriptors, b.Descriptors, s.Match, s.logger)
	s.logger.Infof("matched %d of %d descriptors", len(r.Matches), len(a.Descriptors))

	rng := rand.New(rand.NewSource(s.Ransac.Seed))
	est, err := EstimateHomography(r.Matches, s.Ransac, rng, s.logger)
	if err != nil {
		return r, errors.Wrapf(err, "%s -> %s", a.Filename(), b.Filename())
	}
	r.Estimate = est
	s.logger.Debugf("%s", est)

	if s.Verbosity > 0 {
		out := filepath.Join(s.Output.DebugDir, "matches.png")
		if err := DrawMatches(a.Image, b.Image, est.Inliers, out); err != nil {
			s.logger.Warnf("debug render: %v", err)
		}
	}

	pano, err := Composite(a.Image, b.Image, est.Refined, s.Output.MaxCanvasPixels)
	if err != nil {
		return r, err
	}
	r.Panorama = pano
	s.logger.Infof("%s", r)

	return r, nil
}

// WriteOutputs writes the panorama in every format the config asks for.
func (s *Stitcher) WriteOutputs(r *Result) error {
	if r.Panorama == nil {
		return errors.Wrap(ErrEstimationFailure, "nothing to write")
	}
	o := s.Output

	if o.Filename != "" {
		if err := WritePNG(r.Panorama, o.Filename); err != nil {
			return err
		}
		s.logger.Infof("wrote %s", o.Filename)
	}

	if o.PreviewFilename != "" {
		if err := WritePreview(r.Panorama, o.PreviewWidth, o.PreviewFilename); err != nil {
			return err
		}
		s.logger.Infof("wrote %s", o.PreviewFilename)
	}

	if o.HDRFilename != "" {
		if err := r.Panorama.WriteToHDR(o.HDRFilename); err != nil {
			return err
		}
		s.logger.Infof("wrote %s", o.HDRFilename)
	}

	if o.Tonemapper != "" {
		names := []string{o.Tonemapper}
		if o.Tonemapper == "all" {
			names = Tonemappers
		}
		for _, name := range names {
			img, err := r.Panorama.Tonemap(name)
			if err != nil {
				return err
			}
			filename := filepath.Join(o.DebugDir, fmt.Sprintf("tmo-%s.png", name))
			if err := WritePNG(img, filename); err != nil {
				return err
			}
			s.logger.Infof("wrote %s", filename)
		}
	}

	return nil
}

func (s *Stitcher) dumpFeatures(l *Layer) {
	base := filepath.Join(s.Output.DebugDir, l.Filename())

	if err := l.Response.ToImg(fmt.Sprintf("corner response, %s", l.Filename()), base+"-response.png"); err != nil {
		s.logger.Warnf("debug render: %v", err)
	}
	if err := features.PlotKeypoints(l.Image, l.Keypoints, base+"-keypoints.png"); err != nil {
		s.logger.Warnf("debug render: %v", err)
	}
}
