package compare_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/histfang/pkg/compare"
	"github.com/Sumatoshi-tech/histfang/pkg/hist"
)

func effHistograms(t *testing.T, k, n []float64) (*hist.Histogram, *hist.Histogram) {
	t.Helper()

	edges := make([]float64, len(k)+1)
	for i := range edges {
		edges[i] = float64(i)
	}

	h1, err := hist.FromArrays(edges, k, append([]float64(nil), k...), hist.Unweighted)
	require.NoError(t, err)

	h2, err := hist.FromArrays(edges, n, append([]float64(nil), n...), hist.Unweighted)
	require.NoError(t, err)

	return h1, h2
}

func TestEfficiency(t *testing.T) {
	t.Parallel()

	h1, h2 := effHistograms(t, []float64{3, 4, 5}, []float64{10, 10, 10})

	res, err := compare.Efficiency(h1, h2)
	require.NoError(t, err)

	assert.InDelta(t, 0.3, res.Values[0], delta)
	assert.InDelta(t, 0.4, res.Values[1], delta)
	assert.InDelta(t, 0.5, res.Values[2], delta)

	// Posterior binomial variance, smaller than the naive k(1-k/n)/n^2
	// estimate at these statistics.
	want := math.Sqrt(4.0*5.0/(12.0*13.0) - 16.0/144.0)
	assert.InDelta(t, want, res.Lower[0], delta)
	assert.Equal(t, res.Lower[0], res.Upper[0])

	naive := math.Sqrt(0.3 * 0.7 / 10)
	assert.Less(t, res.Lower[0], naive)
}

func TestEfficiency_EmptyTotalBin(t *testing.T) {
	t.Parallel()

	h1, h2 := effHistograms(t, []float64{0}, []float64{0})

	res, err := compare.Efficiency(h1, h2)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(res.Values[0]))
}

func TestEfficiency_Weighted(t *testing.T) {
	t.Parallel()

	h1, err := hist.FromArrays([]float64{0, 1}, []float64{1}, []float64{2}, hist.Weighted)
	require.NoError(t, err)

	h2, err := hist.FromArrays([]float64{0, 1}, []float64{2}, []float64{2}, hist.Unweighted)
	require.NoError(t, err)

	_, err = compare.Efficiency(h1, h2)
	require.ErrorIs(t, err, compare.ErrWeightedEfficiency)
}

func TestEfficiency_NotSubsample(t *testing.T) {
	t.Parallel()

	h1, h2 := effHistograms(t, []float64{5}, []float64{3})

	_, err := compare.Efficiency(h1, h2)
	require.ErrorIs(t, err, compare.ErrNotSubsample)
}

func TestEfficiency_NegativeContents(t *testing.T) {
	t.Parallel()

	h1, err := hist.FromArrays([]float64{0, 1}, []float64{-1}, []float64{1}, hist.Unweighted)
	require.NoError(t, err)

	h2, err := hist.FromArrays([]float64{0, 1}, []float64{2}, []float64{2}, hist.Unweighted)
	require.NoError(t, err)

	_, err = compare.Efficiency(h1, h2)
	require.ErrorIs(t, err, compare.ErrNegativeContents)
}
