// Package hist provides a binned histogram representation that keeps the
// per-bin sum of weights and sum of squared weights, so that uncertainties
// propagate correctly through scaling and summation. Whether a histogram is
// weighted is a tag fixed when the histogram is filled, never inferred from
// its contents.
package hist

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrBinningMismatch is returned when histograms that must share a
	// binning have different edges or dimensionality.
	ErrBinningMismatch = errors.New("hist: histograms do not share the same binning")

	// ErrInvalidEdges is returned when bin edges are too few, not finite,
	// or not strictly increasing.
	ErrInvalidEdges = errors.New("hist: bin edges must be at least two, finite and strictly increasing")

	// ErrInvalidRange is returned for a regular binning with an empty or
	// inverted range, or a non-positive bin count.
	ErrInvalidRange = errors.New("hist: invalid binning range")

	// ErrLengthMismatch is returned when parallel slices differ in length.
	ErrLengthMismatch = errors.New("hist: slice lengths do not match")

	// ErrNegativeVariance is returned when a provided variance is negative.
	ErrNegativeVariance = errors.New("hist: variance must be non-negative")
)

// Weighting tags a histogram as filled with unit weights or not.
// The tag is decided at fill time: a weighted fill whose weights happen to
// all equal 1 still produces a weighted histogram.
type Weighting uint8

const (
	// Unweighted means every entry was filled with weight 1.
	Unweighted Weighting = iota
	// Weighted means at least one fill carried explicit weights.
	Weighted
)

// String returns the tag name.
func (w Weighting) String() string {
	if w == Weighted {
		return "weighted"
	}

	return "unweighted"
}

// Histogram is a one-dimensional binned histogram. Each bin accumulates the
// sum of entry weights and the sum of squared weights (the variance of the
// bin content). Lower bin edges are inclusive and upper edges exclusive,
// except the last bin whose upper edge is inclusive.
type Histogram struct {
	edges     []float64
	sumW      []float64
	sumW2     []float64
	weighting Weighting

	underflow float64
	overflow  float64
}

// New creates an empty histogram with the given bin edges.
func New(edges []float64) (*Histogram, error) {
	if err := validateEdges(edges); err != nil {
		return nil, err
	}

	bins := len(edges) - 1

	return &Histogram{
		edges: slices.Clone(edges),
		sumW:  make([]float64, bins),
		sumW2: make([]float64, bins),
	}, nil
}

// NewRegular creates an empty histogram with bins equal-width bins on
// [lo, hi].
func NewRegular(bins int, lo, hi float64) (*Histogram, error) {
	if bins < 1 || !(lo < hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, fmt.Errorf("%w: %d bins on [%g, %g]", ErrInvalidRange, bins, lo, hi)
	}

	edges := make([]float64, bins+1)

	width := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}

	// Guard against rounding drift on the closing edge.
	edges[bins] = hi

	return New(edges)
}

// FromArrays builds a histogram directly from per-bin values and variances.
// This is the entry point for bin contents produced elsewhere (an aggregated
// model curve, a comparison result re-binned by a caller, an external
// accumulator).
func FromArrays(edges, values, variances []float64, weighting Weighting) (*Histogram, error) {
	h, err := New(edges)
	if err != nil {
		return nil, err
	}

	if len(values) != h.NumBins() || len(variances) != h.NumBins() {
		return nil, fmt.Errorf("%w: %d bins, %d values, %d variances",
			ErrLengthMismatch, h.NumBins(), len(values), len(variances))
	}

	for _, v := range variances {
		if v < 0 {
			return nil, fmt.Errorf("%w: %g", ErrNegativeVariance, v)
		}
	}

	copy(h.sumW, values)
	copy(h.sumW2, variances)
	h.weighting = weighting

	return h, nil
}

func validateEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("%w: got %d edges", ErrInvalidEdges, len(edges))
	}

	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return fmt.Errorf("%w: edge %d is %g", ErrInvalidEdges, i, e)
		}

		if i > 0 && e <= edges[i-1] {
			return fmt.Errorf("%w: edge %d (%g) <= edge %d (%g)", ErrInvalidEdges, i, e, i-1, edges[i-1])
		}
	}

	return nil
}

// NumBins returns the number of bins.
func (h *Histogram) NumBins() int {
	return len(h.sumW)
}

// Edges returns a copy of the bin edges.
func (h *Histogram) Edges() []float64 {
	return slices.Clone(h.edges)
}

// Values returns a copy of the per-bin sums of weights.
func (h *Histogram) Values() []float64 {
	return slices.Clone(h.sumW)
}

// Variances returns a copy of the per-bin sums of squared weights.
func (h *Histogram) Variances() []float64 {
	return slices.Clone(h.sumW2)
}

// Value returns the content of bin i.
func (h *Histogram) Value(i int) float64 {
	return h.sumW[i]
}

// Variance returns the variance of bin i.
func (h *Histogram) Variance(i int) float64 {
	return h.sumW2[i]
}

// Weighting returns the weightedness tag.
func (h *Histogram) Weighting() Weighting {
	return h.weighting
}

// Unweighted reports whether every fill used unit weights.
func (h *Histogram) Unweighted() bool {
	return h.weighting == Unweighted
}

// BinCenters returns the midpoints of all bins.
func (h *Histogram) BinCenters() []float64 {
	centers := make([]float64, h.NumBins())
	for i := range centers {
		centers[i] = (h.edges[i] + h.edges[i+1]) / 2
	}

	return centers
}

// BinWidths returns the widths of all bins.
func (h *Histogram) BinWidths() []float64 {
	widths := make([]float64, h.NumBins())
	for i := range widths {
		widths[i] = h.edges[i+1] - h.edges[i]
	}

	return widths
}

// Underflow returns the total weight filled below the first edge.
func (h *Histogram) Underflow() float64 {
	return h.underflow
}

// Overflow returns the total weight filled above the last edge.
func (h *Histogram) Overflow() float64 {
	return h.overflow
}

// Coverage returns the fraction of the total filled weight that landed
// inside the binning range. Returns 1 for an empty histogram.
func (h *Histogram) Coverage() float64 {
	var inRange float64
	for _, v := range h.sumW {
		inRange += v
	}

	total := inRange + h.underflow + h.overflow
	if total == 0 {
		return 1
	}

	return inRange / total
}

// findBin returns the bin index for x, or -1 for underflow and NumBins()
// for overflow. The last bin is closed on both sides.
func (h *Histogram) findBin(x float64) int {
	last := len(h.edges) - 1

	if x < h.edges[0] {
		return -1
	}

	if x > h.edges[last] {
		return h.NumBins()
	}

	if x == h.edges[last] {
		return h.NumBins() - 1
	}

	// First edge strictly greater than x; x belongs to the bin before it.
	idx, _ := slices.BinarySearch(h.edges, x)
	if idx < len(h.edges) && h.edges[idx] == x {
		return idx
	}

	return idx - 1
}

// Fill adds unit-weight entries. It does not change the weightedness tag.
func (h *Histogram) Fill(xs ...float64) {
	for _, x := range xs {
		h.fillOne(x, 1)
	}
}

// FillWeighted adds one weighted entry per element of xs and marks the
// histogram as weighted.
func (h *Histogram) FillWeighted(xs, weights []float64) error {
	if len(xs) != len(weights) {
		return fmt.Errorf("%w: %d entries, %d weights", ErrLengthMismatch, len(xs), len(weights))
	}

	h.weighting = Weighted

	for i, x := range xs {
		h.fillOne(x, weights[i])
	}

	return nil
}

func (h *Histogram) fillOne(x, w float64) {
	switch bin := h.findBin(x); {
	case bin < 0:
		h.underflow += w
	case bin >= h.NumBins():
		h.overflow += w
	default:
		h.sumW[bin] += w
		h.sumW2[bin] += w * w
	}
}

// Clone returns a deep copy.
func (h *Histogram) Clone() *Histogram {
	return &Histogram{
		edges:     slices.Clone(h.edges),
		sumW:      slices.Clone(h.sumW),
		sumW2:     slices.Clone(h.sumW2),
		weighting: h.weighting,
		underflow: h.underflow,
		overflow:  h.overflow,
	}
}

// Scale returns a new histogram with every bin content multiplied by c and
// every bin variance by c². Scaling by anything other than 1 produces
// non-unit effective weights, so the result is tagged weighted.
func (h *Histogram) Scale(c float64) *Histogram {
	out := h.Clone()

	for i := range out.sumW {
		out.sumW[i] *= c
		out.sumW2[i] *= c * c
	}

	out.underflow *= c
	out.overflow *= c

	if c != 1 {
		out.weighting = Weighted
	}

	return out
}

// Sum adds histograms bin by bin. All histograms must share the same
// binning. The result is weighted if any input is.
func Sum(hs ...*Histogram) (*Histogram, error) {
	if len(hs) == 0 {
		return nil, fmt.Errorf("%w: no histograms to sum", ErrLengthMismatch)
	}

	if err := CheckBinning(hs...); err != nil {
		return nil, err
	}

	out := hs[0].Clone()

	for _, h := range hs[1:] {
		for i := range out.sumW {
			out.sumW[i] += h.sumW[i]
			out.sumW2[i] += h.sumW2[i]
		}

		out.underflow += h.underflow
		out.overflow += h.overflow

		if h.weighting == Weighted {
			out.weighting = Weighted
		}
	}

	return out, nil
}

// SameBinning reports whether two histograms have identical edges.
func SameBinning(a, b *Histogram) bool {
	return slices.Equal(a.edges, b.edges)
}

// CheckBinning verifies that all histograms share identical edges.
func CheckBinning(hs ...*Histogram) error {
	for _, h := range hs[1:] {
		if !SameBinning(hs[0], h) {
			return ErrBinningMismatch
		}
	}

	return nil
}
