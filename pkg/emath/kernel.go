package emath

import (
	"fmt"
	"math"
)

// A Kernel is a small dense grid of weights, used with FloatGrid.Convolve.
type Kernel struct {
	FloatGrid
}

// NewKernel builds a w x h kernel from row-major values.
func NewKernel(w, h int, vals ...float64) Kernel {
	if len(vals) != w*h {
		panic(fmt.Sprintf("NewKernel: %dx%d kernel needs %d values, got %d", w, h, w*h, len(vals)))
	}
	k := Kernel{NewFloatGrid(w, h)}
	copy(k.values, vals)
	return k
}

// SeparableKernel combines a column and a row into their outer product,
// k(x,y) = col[y] * row[x].
func SeparableKernel(col, row []float64) Kernel {
	k := Kernel{NewFloatGrid(len(row), len(col))}
	for y, c := range col {
		for x, r := range row {
			k.Set(x, y, c*r)
		}
	}
	return k
}

func (k Kernel) At(x, y int) float64 { return k.Get(x, y) }

func (k Kernel) Transpose() Kernel {
	t := Kernel{NewFloatGrid(k.Dy(), k.Dx())}
	for y := 0; y < k.Dy(); y++ {
		for x := 0; x < k.Dx(); x++ {
			t.Set(y, x, k.Get(x, y))
		}
	}
	return t
}

// GaussianKernel1D returns 2*radius+1 Gaussian weights that sum to 1.
func GaussianKernel1D(radius int, sigma float64) []float64 {
	g := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range g {
		d := float64(i - radius)
		g[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += g[i]
	}
	for i := range g {
		g[i] /= sum
	}
	return g
}
