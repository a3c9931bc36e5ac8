package hist_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/histfang/pkg/hist"
)

func TestNewRegular(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(4, 0, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, h.NumBins())
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, h.Edges())
	assert.Equal(t, hist.Unweighted, h.Weighting())
}

func TestNewRegular_InvalidRange(t *testing.T) {
	t.Parallel()

	_, err := hist.NewRegular(0, 0, 1)
	require.ErrorIs(t, err, hist.ErrInvalidRange)

	_, err = hist.NewRegular(10, 2, 2)
	require.ErrorIs(t, err, hist.ErrInvalidRange)
}

func TestNew_InvalidEdges(t *testing.T) {
	t.Parallel()

	_, err := hist.New([]float64{1})
	require.ErrorIs(t, err, hist.ErrInvalidEdges)

	_, err = hist.New([]float64{0, 1, 1})
	require.ErrorIs(t, err, hist.ErrInvalidEdges)

	_, err = hist.New([]float64{0, math.NaN(), 2})
	require.ErrorIs(t, err, hist.ErrInvalidEdges)
}

func TestFill_EdgeSemantics(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(2, 0, 2)
	require.NoError(t, err)

	// Lower edges inclusive, upper exclusive, except the closing edge.
	h.Fill(0, 0.5, 1, 2)

	assert.InDelta(t, 2, h.Value(0), 1e-12)
	assert.InDelta(t, 2, h.Value(1), 1e-12)
	assert.InDelta(t, 0, h.Underflow(), 1e-12)
	assert.InDelta(t, 0, h.Overflow(), 1e-12)
}

func TestFill_OutOfRange(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(2, 0, 2)
	require.NoError(t, err)

	h.Fill(-0.1, 2.1, 1)

	assert.InDelta(t, 1, h.Underflow(), 1e-12)
	assert.InDelta(t, 1, h.Overflow(), 1e-12)
	assert.InDelta(t, 1.0/3, h.Coverage(), 1e-12)
}

func TestFill_VarianceEqualsContent(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(1, 0, 1)
	require.NoError(t, err)

	h.Fill(0.5, 0.5, 0.5)

	assert.InDelta(t, 3, h.Value(0), 1e-12)
	assert.InDelta(t, 3, h.Variance(0), 1e-12)
	assert.True(t, h.Unweighted())
}

func TestFillWeighted_MarksWeighted(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(1, 0, 1)
	require.NoError(t, err)

	// Unit weights passed explicitly still make the histogram weighted.
	require.NoError(t, h.FillWeighted([]float64{0.5, 0.5}, []float64{1, 1}))

	assert.Equal(t, hist.Weighted, h.Weighting())
	assert.InDelta(t, 2, h.Value(0), 1e-12)
	assert.InDelta(t, 2, h.Variance(0), 1e-12)
}

func TestFillWeighted_SumOfSquares(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(1, 0, 1)
	require.NoError(t, err)

	require.NoError(t, h.FillWeighted([]float64{0.5, 0.5}, []float64{2, 3}))

	assert.InDelta(t, 5, h.Value(0), 1e-12)
	assert.InDelta(t, 13, h.Variance(0), 1e-12)
}

func TestFillWeighted_LengthMismatch(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(1, 0, 1)
	require.NoError(t, err)

	err = h.FillWeighted([]float64{0.5}, []float64{1, 2})
	require.ErrorIs(t, err, hist.ErrLengthMismatch)
}

func TestScale_VarianceQuadratic(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(1, 0, 1)
	require.NoError(t, err)

	h.Fill(0.5, 0.5, 0.5, 0.5)

	s := h.Scale(0.5)

	assert.InDelta(t, 2, s.Value(0), 1e-12)
	assert.InDelta(t, 1, s.Variance(0), 1e-12)
	assert.Equal(t, hist.Weighted, s.Weighting())

	// The receiver is untouched.
	assert.InDelta(t, 4, h.Value(0), 1e-12)
	assert.Equal(t, hist.Unweighted, h.Weighting())
}

func TestScale_ByOneKeepsTag(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(1, 0, 1)
	require.NoError(t, err)

	h.Fill(0.5)

	assert.Equal(t, hist.Unweighted, h.Scale(1).Weighting())
}

func TestSum(t *testing.T) {
	t.Parallel()

	a, err := hist.NewRegular(2, 0, 2)
	require.NoError(t, err)

	b, err := hist.NewRegular(2, 0, 2)
	require.NoError(t, err)

	a.Fill(0.5, 0.5)
	b.Fill(0.5, 1.5)

	sum, err := hist.Sum(a, b)
	require.NoError(t, err)

	assert.InDelta(t, 3, sum.Value(0), 1e-12)
	assert.InDelta(t, 1, sum.Value(1), 1e-12)
	assert.InDelta(t, 3, sum.Variance(0), 1e-12)
	assert.Equal(t, hist.Unweighted, sum.Weighting())
}

func TestSum_WeightedPropagates(t *testing.T) {
	t.Parallel()

	a, err := hist.NewRegular(1, 0, 1)
	require.NoError(t, err)

	b, err := hist.NewRegular(1, 0, 1)
	require.NoError(t, err)

	require.NoError(t, b.FillWeighted([]float64{0.5}, []float64{2}))

	sum, err := hist.Sum(a, b)
	require.NoError(t, err)

	assert.Equal(t, hist.Weighted, sum.Weighting())
}

func TestSum_BinningMismatch(t *testing.T) {
	t.Parallel()

	a, err := hist.NewRegular(2, 0, 2)
	require.NoError(t, err)

	b, err := hist.NewRegular(2, 0, 4)
	require.NoError(t, err)

	_, err = hist.Sum(a, b)
	require.ErrorIs(t, err, hist.ErrBinningMismatch)
}

func TestFromArrays(t *testing.T) {
	t.Parallel()

	h, err := hist.FromArrays([]float64{0, 1, 2}, []float64{3, 4}, []float64{3, 4}, hist.Unweighted)
	require.NoError(t, err)

	assert.InDelta(t, 3, h.Value(0), 1e-12)
	assert.InDelta(t, 4, h.Variance(1), 1e-12)
}

func TestFromArrays_Validation(t *testing.T) {
	t.Parallel()

	_, err := hist.FromArrays([]float64{0, 1, 2}, []float64{3}, []float64{3, 4}, hist.Unweighted)
	require.ErrorIs(t, err, hist.ErrLengthMismatch)

	_, err = hist.FromArrays([]float64{0, 1}, []float64{3}, []float64{-1}, hist.Unweighted)
	require.ErrorIs(t, err, hist.ErrNegativeVariance)
}

func TestBinCentersAndWidths(t *testing.T) {
	t.Parallel()

	h, err := hist.New([]float64{0, 1, 3})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 2}, h.BinCenters())
	assert.Equal(t, []float64{1, 2}, h.BinWidths())
}

func TestClone_Independent(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(1, 0, 1)
	require.NoError(t, err)

	h.Fill(0.5)

	c := h.Clone()
	c.Fill(0.5)

	assert.InDelta(t, 1, h.Value(0), 1e-12)
	assert.InDelta(t, 2, c.Value(0), 1e-12)
}
