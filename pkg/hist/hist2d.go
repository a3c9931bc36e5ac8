package hist

import (
	"fmt"
)

// Histogram2D is a two-dimensional binned histogram with the same storage
// contract as Histogram: per-bin sum of weights and sum of squared weights.
// Bins are addressed as (ix, iy) with x the fastest-varying index when
// flattened.
type Histogram2D struct {
	xEdges    []float64
	yEdges    []float64
	sumW      []float64
	sumW2     []float64
	weighting Weighting
	outside   float64
}

// New2D creates an empty 2D histogram with the given edges on each axis.
func New2D(xEdges, yEdges []float64) (*Histogram2D, error) {
	if err := validateEdges(xEdges); err != nil {
		return nil, fmt.Errorf("x axis: %w", err)
	}

	if err := validateEdges(yEdges); err != nil {
		return nil, fmt.Errorf("y axis: %w", err)
	}

	bins := (len(xEdges) - 1) * (len(yEdges) - 1)

	return &Histogram2D{
		xEdges: append([]float64(nil), xEdges...),
		yEdges: append([]float64(nil), yEdges...),
		sumW:   make([]float64, bins),
		sumW2:  make([]float64, bins),
	}, nil
}

// NumBinsX returns the bin count along x.
func (h *Histogram2D) NumBinsX() int {
	return len(h.xEdges) - 1
}

// NumBinsY returns the bin count along y.
func (h *Histogram2D) NumBinsY() int {
	return len(h.yEdges) - 1
}

// Weighting returns the weightedness tag.
func (h *Histogram2D) Weighting() Weighting {
	return h.weighting
}

// Value returns the content of bin (ix, iy).
func (h *Histogram2D) Value(ix, iy int) float64 {
	return h.sumW[iy*h.NumBinsX()+ix]
}

// Variance returns the variance of bin (ix, iy).
func (h *Histogram2D) Variance(ix, iy int) float64 {
	return h.sumW2[iy*h.NumBinsX()+ix]
}

// Fill adds unit-weight (x, y) entries.
func (h *Histogram2D) Fill(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: %d x values, %d y values", ErrLengthMismatch, len(xs), len(ys))
	}

	for i := range xs {
		h.fillOne(xs[i], ys[i], 1)
	}

	return nil
}

// FillWeighted adds weighted (x, y) entries and marks the histogram as
// weighted.
func (h *Histogram2D) FillWeighted(xs, ys, weights []float64) error {
	if len(xs) != len(ys) || len(xs) != len(weights) {
		return fmt.Errorf("%w: %d x values, %d y values, %d weights",
			ErrLengthMismatch, len(xs), len(ys), len(weights))
	}

	h.weighting = Weighted

	for i := range xs {
		h.fillOne(xs[i], ys[i], weights[i])
	}

	return nil
}

func (h *Histogram2D) fillOne(x, y, w float64) {
	ix := findBinIn(h.xEdges, x)
	iy := findBinIn(h.yEdges, y)

	if ix < 0 || iy < 0 || ix >= h.NumBinsX() || iy >= h.NumBinsY() {
		h.outside += w

		return
	}

	idx := iy*h.NumBinsX() + ix
	h.sumW[idx] += w
	h.sumW2[idx] += w * w
}

// findBinIn mirrors Histogram.findBin over an arbitrary edge slice.
func findBinIn(edges []float64, x float64) int {
	tmp := Histogram{edges: edges, sumW: make([]float64, len(edges)-1)}

	return tmp.findBin(x)
}

// Outside returns the total weight filled outside the binning on either axis.
func (h *Histogram2D) Outside() float64 {
	return h.outside
}

// Flatten returns a 1D histogram over the flat bin index [0, nx*ny), with x
// varying fastest. Bin contents and variances carry over unchanged.
func (h *Histogram2D) Flatten() *Histogram {
	bins := len(h.sumW)

	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = float64(i)
	}

	out, _ := FromArrays(edges, h.sumW, h.sumW2, h.weighting)

	return out
}

// ProjectionX sums over y, producing a 1D histogram on the x binning.
func (h *Histogram2D) ProjectionX() *Histogram {
	return h.project(h.xEdges, h.NumBinsX(), func(i, j int) int { return j*h.NumBinsX() + i })
}

// ProjectionY sums over x, producing a 1D histogram on the y binning.
func (h *Histogram2D) ProjectionY() *Histogram {
	return h.project(h.yEdges, h.NumBinsY(), func(i, j int) int { return i*h.NumBinsX() + j })
}

func (h *Histogram2D) project(edges []float64, bins int, at func(i, j int) int) *Histogram {
	values := make([]float64, bins)
	variances := make([]float64, bins)

	other := len(h.sumW) / bins

	for i := range bins {
		for j := range other {
			values[i] += h.sumW[at(i, j)]
			variances[i] += h.sumW2[at(i, j)]
		}
	}

	out, _ := FromArrays(edges, values, variances, h.weighting)

	return out
}
