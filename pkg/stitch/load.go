package stitch

import (
	"image"
	_ "image/jpeg" // registers the decoder for image.Decode
	_ "image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/tiff"
)

// Inputs is what LoadFilesAndDirs found: image layers in the order
// they were named (directory contents in name order), and the config
// file if there was one.
type Inputs struct {
	Layers         []Layer
	Config         Config
	ConfigFilename string
}

func NewInputs() Inputs {
	return Inputs{Config: NewConfig()}
}

// LoadFilesAndDirs loads every image and .yaml config among the args,
// recursing into directories. Files with other extensions are ignored.
func (in *Inputs) LoadFilesAndDirs(logger golog.Logger, args ...string) error {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return errors.Wrapf(ErrInvalidInput, "load %s: %v", arg, err)

		case item.IsDir():
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return errors.Wrapf(ErrInvalidInput, "readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := in.LoadFilesAndDirs(logger, filepath.Join(arg, content.Name())); err != nil {
					return err
				}
			}

		default:
			if err := in.loadFile(logger, arg); err != nil {
				return errors.Wrapf(err, "loadfile %s", arg)
			}
		}
	}

	return nil
}

func (in *Inputs) loadFile(logger golog.Logger, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {

	case ".tif", ".tiff", ".png", ".jpg", ".jpeg":
		l, err := LoadLayer(filename)
		if err != nil {
			return err
		}
		logger.Infof("Loaded %s", l)
		in.Layers = append(in.Layers, l)

	case ".yaml", ".yml":
		cfg, err := loadConfig(filename)
		if err != nil {
			return errors.Wrapf(ErrInvalidInput, "loading %s as config YAML failed: %v", filename, err)
		}
		in.Config = cfg
		in.ConfigFilename = filename
		logger.Infof("Loaded base configuration from %s", filename)

	default:
		logger.Debugf("ignoring %s", filename)
	}

	return nil
}

func loadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config read %s", filename)
	}

	return newConfigFromYaml(contents)
}

// LoadLayer decodes an image file (TIFF, PNG or JPEG) into a Layer,
// along with any camera EXIF data it carries.
func LoadLayer(filename string) (Layer, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return Layer{}, errors.Wrapf(ErrInvalidInput, "open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		img, err = tiff.Decode(reader)
	default:
		img, _, err = image.Decode(reader)
	}
	if err != nil {
		return Layer{}, errors.Wrapf(ErrInvalidInput, "decoding '%s': %v", filename, err)
	}

	l, err := NewLayer(filename, img)
	if err != nil {
		return l, err
	}

	// EXIF is optional; plenty of PNGs have none.
	if ci, err := readCameraInfo(filename); err == nil {
		l.CameraInfo = ci
	}

	return l, nil
}

func readCameraInfo(filename string) (CameraInfo, error) {
	ci := CameraInfo{}

	reader, err := os.Open(filename)
	if err != nil {
		return ci, errors.Wrapf(err, "open+r exif '%s'", filename)
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return ci, errors.Wrapf(err, "exif parsing '%s'", filename)
	}

	if tag, err := ex.Get(exif.Make); err == nil {
		ci.Make, _ = tag.StringVal()
	}
	if tag, err := ex.Get(exif.Model); err == nil {
		ci.Model, _ = tag.StringVal()
	}
	if tag, err := ex.Get(exif.FocalLength); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil && denom != 0 {
			ci.FocalLength = float64(num) / float64(denom)
		}
	}
	if t, err := ex.DateTime(); err == nil {
		ci.Taken = t
	}

	return ci, nil
}
