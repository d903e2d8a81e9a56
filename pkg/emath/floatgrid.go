package emath

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
	"github.com/pkg/errors"
)

// A FloatGrid is a grid of floats, with some operations. Values are
// addressed as (x,y), i.e. (col,row).
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (fg *FloatGrid) NewFromThis() FloatGrid   { return NewFloatGrid(fg.Dx(), fg.Dy()) }
func (fg *FloatGrid) Set(x, y int, v float64)  { fg.values[fg.stride*y+x] = v }
func (fg *FloatGrid) Get(x, y int) float64     { return fg.values[fg.stride*y+x] }
func (fg *FloatGrid) Dx() int                  { return fg.stride }
func (fg *FloatGrid) Bounds() image.Rectangle  { return image.Rect(0, 0, fg.Dx(), fg.Dy()) }
func (fg *FloatGrid) In(x, y int) bool         { return x >= 0 && y >= 0 && x < fg.Dx() && y < fg.Dy() }

func (fg *FloatGrid) Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (fg *FloatGrid) Copy() FloatGrid {
	g2 := FloatGrid{stride: fg.stride, values: make([]float64, len(fg.values))}
	copy(g2.values, fg.values)
	return g2
}

// NewFloatGridFromImage builds a grayscale grid from the luminance of
// each pixel, scaled into [0,1].
func NewFloatGridFromImage(img image.Image) (FloatGrid, error) {
	b := img.Bounds()
	if b.Empty() {
		return FloatGrid{}, errors.Errorf("image has zero area (%s)", b)
	}

	fg := NewFloatGrid(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			fg.Set(x-b.Min.X, y-b.Min.Y, float64(g.Y)/65535.0)
		}
	}
	return fg, nil
}

// Mul returns the element-wise product of two grids of the same size.
func (fg *FloatGrid) Mul(g2 FloatGrid) FloatGrid {
	if fg.Dx() != g2.Dx() || fg.Dy() != g2.Dy() {
		panic(fmt.Sprintf("FloatGrid.Mul: size mismatch %dx%d vs %dx%d", fg.Dx(), fg.Dy(), g2.Dx(), g2.Dy()))
	}
	out := fg.NewFromThis()
	for i := range fg.values {
		out.values[i] = fg.values[i] * g2.values[i]
	}
	return out
}

// A Border says how Convolve reads pixels that fall outside the grid.
type Border int

const (
	BorderReplicate Border = iota // nearest edge pixel is repeated
	BorderZero                    // outside pixels read as 0
)

func (b Border) String() string {
	switch b {
	case BorderReplicate:
		return "replicate"
	case BorderZero:
		return "zero"
	}
	return fmt.Sprintf("Border(%d)", int(b))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}

func (fg *FloatGrid) getWithBorder(x, y int, border Border) float64 {
	if fg.In(x, y) {
		return fg.Get(x, y)
	}
	if border == BorderZero {
		return 0.0
	}
	return fg.Get(clampInt(x, 0, fg.Dx()-1), clampInt(y, 0, fg.Dy()-1))
}

// Convolve applies the kernel as a true convolution (the kernel is
// flipped), centred on each pixel.
func (fg *FloatGrid) Convolve(k Kernel, border Border) FloatGrid {
	out := fg.NewFromThis()
	cx, cy := k.Dx()/2, k.Dy()/2

	for y := 0; y < fg.Dy(); y++ {
		for x := 0; x < fg.Dx(); x++ {
			sum := 0.0
			for j := 0; j < k.Dy(); j++ {
				for i := 0; i < k.Dx(); i++ {
					kv := k.At(i, j)
					if kv == 0.0 {
						continue
					}
					sum += kv * fg.getWithBorder(x-(i-cx), y-(j-cy), border)
				}
			}
			out.Set(x, y, sum)
		}
	}

	return out
}

// GaussianBlur smooths the grid with a normalized (2*radius+1)^2
// Gaussian of the given sigma, replicating edge pixels. Done as two 1D
// passes, X first then Y.
func (fg *FloatGrid) GaussianBlur(radius int, sigma float64) FloatGrid {
	g1d := GaussianKernel1D(radius, sigma)
	t := fg.Convolve(NewKernel(len(g1d), 1, g1d...), BorderReplicate)
	return t.Convolve(NewKernel(1, len(g1d), g1d...), BorderReplicate)
}

func (fg *FloatGrid) MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0 * min

	for i := 0; i < len(fg.values); i++ {
		if fg.values[i] > max {
			max = fg.values[i]
		}
		if fg.values[i] < min {
			min = fg.values[i]
		}
	}
	return min, max
}

func (fg *FloatGrid) Stats() string {
	min, max := fg.MinMax()
	nonzero := 0
	for _, v := range fg.values {
		if v != 0.0 {
			nonzero++
		}
	}
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}, %d nonzero]", fg.Dx(), fg.Dy(), min, max, nonzero)
}

// ToImage renders the grid as 16bit grayscale, scaled to the range of
// values in the grid and gamma expanded to look normal for human vision.
func (fg *FloatGrid) ToImage() *image.Gray16 {
	min, max := fg.MinMax()
	span := max - min
	if span == 0 {
		span = 1.0
	}

	img := image.NewGray16(fg.Bounds())
	for x := 0; x < fg.Dx(); x++ {
		for y := 0; y < fg.Dy(); y++ {
			gray := GammaExpand_F64((fg.Get(x, y) - min) / span)
			img.SetGray16(x, y, color.Gray16{Y: uint16(gray * 65535.0)})
		}
	}
	return img
}

// ToImg saves the grid as a PNG, with a title written on it.
func (fg *FloatGrid) ToImg(title, filename string) error {
	dc := gg.NewContextForImage(fg.ToImage())
	dc.SetRGB(1, 0, 0)
	dc.DrawString(title, 10, 20)
	return errors.Wrapf(dc.SavePNG(filename), "FloatGrid.ToImg '%s'", filename)
}
