package stitch

import (
	"fmt"
	"image"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/tmo"
	"github.com/pkg/errors"
)

var (
	Tonemappers = []string{"drago03", "durand", "icam06", "linear", "reinhard05"}
)

func ListTonemappers() string {
	return fmt.Sprintf("%v", Tonemappers)
}

type tonemapperFunc func(hdr.Image) tmo.ToneMappingOperator

// lookupTonemapper returns a constructor for the named operator. The
// parameters keep highlights from blowing out, which matters for sky
// heavy panoramas.
func lookupTonemapper(name string) (tonemapperFunc, error) {
	switch name {
	case "drago03":
		return func(img hdr.Image) tmo.ToneMappingOperator {
			op := tmo.NewDefaultDrago03(img)
			op.Bias = 1.0
			return op
		}, nil

	case "durand":
		return func(img hdr.Image) tmo.ToneMappingOperator { return tmo.NewDefaultDurand(img) }, nil

	case "icam06":
		return func(img hdr.Image) tmo.ToneMappingOperator {
			op := tmo.NewDefaultICam06(img)
			op.Contrast = 0.65
			op.MaxClipping = 0.99999
			return op
		}, nil

	case "linear":
		return func(img hdr.Image) tmo.ToneMappingOperator { return tmo.NewLinear(img) }, nil

	case "reinhard05":
		return func(img hdr.Image) tmo.ToneMappingOperator {
			op := tmo.NewDefaultReinhard05(img)
			op.Chromatic = 0.005
			op.Light = 0.005
			return op
		}, nil
	}

	return nil, errors.Errorf("tonemapper %q not recognized, wanted %s", name, ListTonemappers())
}

// Tonemap runs the named operator over the panorama's HDR view.
func (p *Panorama) Tonemap(name string) (image.Image, error) {
	newOp, err := lookupTonemapper(name)
	if err != nil {
		return nil, err
	}
	return newOp(p.HDR()).Perform(), nil
}
