// Package model combines weighted sub-histograms and analytic functions
// into a single model curve with an aggregate uncertainty band. Components
// are split into a stacked group and an unstacked group; the split only
// affects how a renderer shades them, the model total is always
// sum(stacked) + sum(unstacked).
package model

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/histfang/pkg/hist"
)

// ErrEmptyModel is returned when a model has no components.
var ErrEmptyModel = errors.New("model: need at least one component")

// Func is a real-valued function component. It is interpreted as a density:
// the expected count in a bin is f(center) * width.
type Func func(x float64) float64

// component is a model component evaluated on the model's binning.
type component struct {
	values    []float64
	variances []float64 // nil for functions (exact components).
}

// Model is an ordered collection of stacked and unstacked components over a
// fixed binning.
type Model struct {
	edges     []float64
	centers   []float64
	widths    []float64
	stacked   []component
	unstacked []component
}

// New creates an empty model on the given bin edges.
func New(edges []float64) (*Model, error) {
	ref, err := hist.New(edges)
	if err != nil {
		return nil, err
	}

	return &Model{
		edges:   ref.Edges(),
		centers: ref.BinCenters(),
		widths:  ref.BinWidths(),
	}, nil
}

// NumBins returns the number of bins of the model binning.
func (m *Model) NumBins() int {
	return len(m.centers)
}

// Edges returns a copy of the model bin edges.
func (m *Model) Edges() []float64 {
	return append([]float64(nil), m.edges...)
}

// BinCenters returns a copy of the model bin centers.
func (m *Model) BinCenters() []float64 {
	return append([]float64(nil), m.centers...)
}

func (m *Model) histComponent(h *hist.Histogram) (component, error) {
	ref, err := hist.New(m.edges)
	if err != nil {
		return component{}, err
	}

	if err := hist.CheckBinning(ref, h); err != nil {
		return component{}, err
	}

	return component{values: h.Values(), variances: h.Variances()}, nil
}

func (m *Model) funcComponent(f Func) component {
	values := make([]float64, m.NumBins())
	for i, c := range m.centers {
		values[i] = f(c) * m.widths[i]
	}

	return component{values: values}
}

// StackHistogram appends a histogram to the stacked group. The histogram
// must share the model binning.
func (m *Model) StackHistogram(h *hist.Histogram) error {
	c, err := m.histComponent(h)
	if err != nil {
		return fmt.Errorf("stacked component %d: %w", len(m.stacked), err)
	}

	m.stacked = append(m.stacked, c)

	return nil
}

// StackFunction appends a function to the stacked group.
func (m *Model) StackFunction(f Func) {
	m.stacked = append(m.stacked, m.funcComponent(f))
}

// AddHistogram appends a histogram to the unstacked group. The histogram
// must share the model binning.
func (m *Model) AddHistogram(h *hist.Histogram) error {
	c, err := m.histComponent(h)
	if err != nil {
		return fmt.Errorf("unstacked component %d: %w", len(m.unstacked), err)
	}

	m.unstacked = append(m.unstacked, c)

	return nil
}

// AddFunction appends a function to the unstacked group.
func (m *Model) AddFunction(f Func) {
	m.unstacked = append(m.unstacked, m.funcComponent(f))
}

// NumComponents returns the total number of components.
func (m *Model) NumComponents() int {
	return len(m.stacked) + len(m.unstacked)
}

// Aggregate evaluates the model total per bin. With withUncertainty the
// second slice holds the quadrature sum of the histogram components'
// variances (functions contribute zero); without it the slice is nil and
// the model is to be treated as exact, which turns a downstream pull into
// (data-model)/sigma_data.
func (m *Model) Aggregate(withUncertainty bool) (values, variances []float64, err error) {
	if m.NumComponents() == 0 {
		return nil, nil, ErrEmptyModel
	}

	values = make([]float64, m.NumBins())

	if withUncertainty {
		variances = make([]float64, m.NumBins())
	}

	for _, group := range [][]component{m.stacked, m.unstacked} {
		for _, c := range group {
			for i := range values {
				values[i] += c.values[i]
			}

			if withUncertainty && c.variances != nil {
				for i := range variances {
					variances[i] += c.variances[i]
				}
			}
		}
	}

	return values, variances, nil
}

// Total packages the aggregate as a histogram on the model binning, ready
// for the comparison engine. Without uncertainty the variances are all
// zero. Model totals mix arbitrary weights, so the result is tagged
// weighted.
func (m *Model) Total(withUncertainty bool) (*hist.Histogram, error) {
	values, variances, err := m.Aggregate(withUncertainty)
	if err != nil {
		return nil, err
	}

	if variances == nil {
		variances = make([]float64, len(values))
	}

	return hist.FromArrays(m.edges, values, variances, hist.Weighted)
}

// StackedSeries returns the per-component bin values of the stacked group,
// in insertion order.
func (m *Model) StackedSeries() [][]float64 {
	return seriesOf(m.stacked)
}

// UnstackedSeries returns the per-component bin values of the unstacked
// group, in insertion order.
func (m *Model) UnstackedSeries() [][]float64 {
	return seriesOf(m.unstacked)
}

func seriesOf(cs []component) [][]float64 {
	out := make([][]float64, len(cs))
	for i, c := range cs {
		out[i] = append([]float64(nil), c.values...)
	}

	return out
}

// FunctionHistogram evaluates a function component on the given edges and
// returns it as an exact (zero variance) histogram.
func FunctionHistogram(f Func, edges []float64) (*hist.Histogram, error) {
	m, err := New(edges)
	if err != nil {
		return nil, err
	}

	c := m.funcComponent(f)

	variances := make([]float64, len(c.values))

	return hist.FromArrays(edges, c.values, variances, hist.Weighted)
}
