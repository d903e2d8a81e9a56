package stitch

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/pano-stitch/pkg/features"
)

type Config struct {
	Verbosity int                   `yaml:"verbosity"`
	Detect    features.DetectConfig `yaml:"detect"`
	Match     features.MatchConfig  `yaml:"match"`
	Ransac    RansacConfig          `yaml:"ransac"`
	Output    OutputConfig          `yaml:"output"`
}

type RansacConfig struct {
	Iterations      int     `yaml:"iterations"`
	InlierThreshold float64 `yaml:"inlier_threshold"` // in pixels, measured in image B
	Seed            int64   `yaml:"seed"`
}

type OutputConfig struct {
	Filename        string `yaml:"filename"`         // PNG panorama
	HDRFilename     string `yaml:"hdr_filename"`     // Radiance .hdr panorama, if set
	PreviewFilename string `yaml:"preview_filename"` // downscaled PNG, if set
	PreviewWidth    uint   `yaml:"preview_width"`
	Tonemapper      string `yaml:"tonemapper"` // if set, writes tmo-<name>.png into DebugDir; "all" for every one
	MaxCanvasPixels int    `yaml:"max_canvas_pixels"`
	DebugDir        string `yaml:"debug_dir"` // where renders go when verbosity > 0
}

func NewConfig() Config {
	return Config{
		Detect: features.DefaultDetectConfig(),
		Match:  features.DefaultMatchConfig(),
		Ransac: RansacConfig{
			Iterations:      1000,
			InlierThreshold: 3.0,
			Seed:            1,
		},
		Output: OutputConfig{
			Filename:        "panorama.png",
			PreviewWidth:    1024,
			MaxCanvasPixels: 200 * 1000 * 1000,
			DebugDir:        ".",
		},
	}
}

// newConfigFromYaml starts from the defaults, so a file only needs the
// values it changes.
func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, errors.Wrap(err, "config yaml")
	}
	return c, nil
}

func (c Config) AsYaml() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "can't marshal config yaml")
	}
	return string(b), nil
}

func (c Config) Validate() error {
	if err := c.Detect.Validate(); err != nil {
		return errors.Wrap(ErrInvalidInput, err.Error())
	}

	switch {
	case c.Match.ScoreCutoff <= 0:
		return errors.Wrapf(ErrInvalidInput, "match.score_cutoff %f must be positive", c.Match.ScoreCutoff)
	case c.Match.Ratio <= 0 || c.Match.Ratio > 1:
		return errors.Wrapf(ErrInvalidInput, "match.ratio %f must be in (0,1]", c.Match.Ratio)
	case c.Ransac.Iterations <= 0:
		return errors.Wrapf(ErrInvalidInput, "ransac.iterations %d must be positive", c.Ransac.Iterations)
	case c.Ransac.InlierThreshold < 0:
		return errors.Wrapf(ErrInvalidInput, "ransac.inlier_threshold %f must not be negative", c.Ransac.InlierThreshold)
	case c.Output.MaxCanvasPixels <= 0:
		return errors.Wrapf(ErrInvalidInput, "output.max_canvas_pixels %d must be positive", c.Output.MaxCanvasPixels)
	}

	if c.Output.Tonemapper != "" && c.Output.Tonemapper != "all" {
		if _, err := lookupTonemapper(c.Output.Tonemapper); err != nil {
			return errors.Wrap(ErrInvalidInput, err.Error())
		}
	}
	return nil
}
