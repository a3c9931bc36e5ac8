// Package pdf provides a few analytic distribution shapes and a generic
// inverse-CDF sampler over a finite range. The shapes double as model
// function components and as generators of synthetic datasets for demos
// and tests.
package pdf

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
)

var (
	// ErrInvalidRange is returned when a sampling range is empty or reversed.
	ErrInvalidRange = errors.New("pdf: range upper bound must exceed lower bound")

	// ErrZeroMass is returned when a shape has no probability mass on the
	// requested range.
	ErrZeroMass = errors.New("pdf: shape has zero integral over the range")
)

// Shape is an unnormalized density. Implementations must be non-negative.
type Shape interface {
	At(x float64) float64
}

// Func adapts a plain function to the Shape interface.
type Func func(x float64) float64

// At evaluates the function.
func (f Func) At(x float64) float64 {
	return f(x)
}

// Gauss is a Gaussian bell curve with the given center and width.
type Gauss struct {
	Mu    float64
	Sigma float64
}

// At evaluates the unnormalized Gaussian density.
func (g Gauss) At(x float64) float64 {
	z := (x - g.Mu) / g.Sigma

	return math.Exp(-0.5 * z * z)
}

// Expo is a decaying exponential exp(-x/Tau) shifted by X0.
type Expo struct {
	X0  float64
	Tau float64
}

// At evaluates the unnormalized exponential density.
func (e Expo) At(x float64) float64 {
	return math.Exp(-(x - e.X0) / e.Tau)
}

// CrystalBall is a Gaussian core with a power-law tail on the low side,
// the standard shape for reconstructed resonance peaks with radiative
// losses. Alpha (> 0) is the transition point in units of Sigma and N is
// the tail exponent.
type CrystalBall struct {
	Mu    float64
	Sigma float64
	Alpha float64
	N     float64
}

// At evaluates the unnormalized Crystal Ball density.
func (c CrystalBall) At(x float64) float64 {
	z := (x - c.Mu) / c.Sigma

	if z > -c.Alpha {
		return math.Exp(-0.5 * z * z)
	}

	a := math.Pow(c.N/c.Alpha, c.N) * math.Exp(-0.5*c.Alpha*c.Alpha)
	b := c.N/c.Alpha - c.Alpha

	return a * math.Pow(b-z, -c.N)
}

// Normalized returns the shape as a proper density on [lo, hi]: it
// integrates to one over the range and is zero-cost to evaluate beyond the
// normalization constant. The constant is computed by trapezoidal
// quadrature on a fine grid.
func Normalized(s Shape, lo, hi float64) (Func, error) {
	norm, err := integral(s, lo, hi)
	if err != nil {
		return nil, err
	}

	return func(x float64) float64 {
		return s.At(x) / norm
	}, nil
}

const gridPoints = 2048

func grid(lo, hi float64) []float64 {
	xs := make([]float64, gridPoints)

	step := (hi - lo) / float64(gridPoints-1)
	for i := range xs {
		xs[i] = lo + float64(i)*step
	}

	xs[gridPoints-1] = hi

	return xs
}

func integral(s Shape, lo, hi float64) (float64, error) {
	if !(hi > lo) {
		return 0, fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, lo, hi)
	}

	xs := grid(lo, hi)

	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = s.At(x)
	}

	norm := integrate.Trapezoidal(xs, ys)
	if !(norm > 0) || math.IsInf(norm, 0) {
		return 0, ErrZeroMass
	}

	return norm, nil
}

// Sampler draws variates from a shape restricted to [lo, hi] by inverting
// a tabulated CDF. The inverse is a piecewise-linear interpolant, accurate
// to the tabulation grid; for histogramming purposes that bias is well
// below a bin width at the default grid density.
type Sampler struct {
	inv interp.PiecewiseLinear
	rng *rand.Rand
}

// NewSampler tabulates the CDF of s on [lo, hi] and seeds the generator.
// The same seed reproduces the same stream.
func NewSampler(s Shape, lo, hi float64, seed uint64) (*Sampler, error) {
	if !(hi > lo) {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, lo, hi)
	}

	xs := grid(lo, hi)

	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = s.At(x)
	}

	// Cumulative trapezoid, then strip duplicate ordinates so the inverse
	// stays a function where the density vanishes.
	cdf := make([]float64, len(xs))
	for i := 1; i < len(xs); i++ {
		cdf[i] = cdf[i-1] + 0.5*(ys[i]+ys[i-1])*(xs[i]-xs[i-1])
	}

	total := cdf[len(cdf)-1]
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, ErrZeroMass
	}

	us := make([]float64, 0, len(xs))
	vs := make([]float64, 0, len(xs))

	for i := range cdf {
		u := cdf[i] / total
		if i > 0 && u <= us[len(us)-1] {
			continue
		}

		us = append(us, u)
		vs = append(vs, xs[i])
	}

	sampler := &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}

	if err := sampler.inv.Fit(us, vs); err != nil {
		return nil, fmt.Errorf("pdf: fitting inverse cdf: %w", err)
	}

	return sampler, nil
}

// Draw returns one variate.
func (s *Sampler) Draw() float64 {
	return s.inv.Predict(s.rng.Float64())
}

// DrawN returns n variates.
func (s *Sampler) DrawN(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Draw()
	}

	return out
}
