package plot_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/histfang/pkg/compare"
	"github.com/Sumatoshi-tech/histfang/pkg/hist"
	"github.com/Sumatoshi-tech/histfang/pkg/model"
	"github.com/Sumatoshi-tech/histfang/pkg/plot"
	"github.com/Sumatoshi-tech/histfang/pkg/plotpage"
	"github.com/Sumatoshi-tech/histfang/pkg/uncertainty"
)

func filled(t *testing.T, xs ...float64) *hist.Histogram {
	t.Helper()

	h, err := hist.NewRegular(4, 0, 4)
	require.NoError(t, err)

	h.Fill(xs...)

	return h
}

func TestHistogramChart(t *testing.T) {
	t.Parallel()

	h1 := filled(t, 0.5, 1.5, 1.5)
	h2 := filled(t, 2.5)

	chart := plot.HistogramChart(plotpage.ThemeDark, plotpage.DefaultStyle(), "Entries",
		plot.NamedHistogram{Name: "first", Histogram: h1},
		plot.NamedHistogram{Name: "second", Histogram: h2},
	)

	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 2)
	assert.Equal(t, "first", chart.MultiSeries[0].Name)
}

func TestHistogramChart_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, plot.HistogramChart(plotpage.ThemeDark, plotpage.DefaultStyle(), ""))
}

func TestDataChart(t *testing.T) {
	t.Parallel()

	h := filled(t, 0.5, 1.5, 2.5, 3.5)

	chart, err := plot.DataChart(plotpage.ThemeLight, plotpage.DefaultStyle(), "data", h, uncertainty.Asymmetrical)
	require.NoError(t, err)

	// Data series plus the two band series.
	require.Len(t, chart.MultiSeries, 3)
}

func TestDataChart_WeightedAsymmetricalRefused(t *testing.T) {
	t.Parallel()

	h, err := hist.NewRegular(2, 0, 2)
	require.NoError(t, err)

	require.NoError(t, h.FillWeighted([]float64{0.5}, []float64{2}))

	_, err = plot.DataChart(plotpage.ThemeDark, plotpage.DefaultStyle(), "data", h, uncertainty.Asymmetrical)
	require.ErrorIs(t, err, uncertainty.ErrWeightedHistogram)
}

func TestComparisonChart_RatioHasReference(t *testing.T) {
	t.Parallel()

	h1 := filled(t, 0.5, 1.5)
	h2 := filled(t, 0.5, 2.5)

	res, err := compare.Compare(h1, h2, compare.KindRatio, compare.Options{})
	require.NoError(t, err)

	refBand := compare.ReferenceBand(h2)

	chart := plot.ComparisonChart(plotpage.ThemeDark, plotpage.CompactStyle(), h1, res, compare.KindRatio, refBand)
	require.NotNil(t, chart)

	names := make([]string, 0, len(chart.MultiSeries))
	for _, s := range chart.MultiSeries {
		names = append(names, s.Name)
	}

	assert.Contains(t, names, "Ratio")
	assert.Contains(t, names, "reference")
	assert.Contains(t, names, "reference uncertainty")
}

func TestComparisonChart_EfficiencyHasNoReference(t *testing.T) {
	t.Parallel()

	h1 := filled(t, 0.5)
	h2 := filled(t, 0.5, 0.5)

	res, err := compare.Efficiency(h1, h2)
	require.NoError(t, err)

	chart := plot.ComparisonChart(plotpage.ThemeDark, plotpage.CompactStyle(), h1, res, compare.KindEfficiency, nil)
	require.NotNil(t, chart)

	for _, s := range chart.MultiSeries {
		assert.NotEqual(t, "reference", s.Name)
	}
}

func TestComparisonPage(t *testing.T) {
	t.Parallel()

	h1 := filled(t, 0.5, 1.5, 2.5)
	h2 := filled(t, 0.5, 1.5, 3.5)

	page, err := plot.ComparisonPage(plotpage.ThemeDark, h1, h2, compare.KindPull, compare.Options{})
	require.NoError(t, err)
	require.Len(t, page.Sections, 2)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))
	assert.Contains(t, buf.String(), "Pull")
}

func TestComparisonPage_BinningMismatch(t *testing.T) {
	t.Parallel()

	h1 := filled(t, 0.5)

	h2, err := hist.NewRegular(2, 0, 4)
	require.NoError(t, err)

	_, err = plot.ComparisonPage(plotpage.ThemeDark, h1, h2, compare.KindRatio, compare.Options{})
	require.ErrorIs(t, err, hist.ErrBinningMismatch)
}

func TestModelChart(t *testing.T) {
	t.Parallel()

	data := filled(t, 0.5, 1.5, 2.5, 3.5)

	m, err := model.New(data.Edges())
	require.NoError(t, err)

	require.NoError(t, m.StackHistogram(filled(t, 0.5, 1.5)))
	m.AddFunction(func(float64) float64 { return 0.5 })

	chart, err := plot.ModelChart(plotpage.ThemeDark, plotpage.DefaultStyle(), m, data, plot.DefaultDataModelOptions())
	require.NoError(t, err)
	require.NotNil(t, chart)

	require.NotEmpty(t, chart.MultiSeries)
	assert.Equal(t, "stacked 1", chart.MultiSeries[0].Name)
}

func TestModelChart_ZeroValueOptions(t *testing.T) {
	t.Parallel()

	data := filled(t, 0.5, 1.5)

	m, err := model.New(data.Edges())
	require.NoError(t, err)

	require.NoError(t, m.StackHistogram(filled(t, 0.5)))

	// An unset data uncertainty kind falls back to the same inference
	// DataModelPage applies.
	chart, err := plot.ModelChart(plotpage.ThemeDark, plotpage.DefaultStyle(), m, data, plot.DataModelOptions{})
	require.NoError(t, err)
	require.NotNil(t, chart)

	weighted, err := hist.NewRegular(4, 0, 4)
	require.NoError(t, err)

	require.NoError(t, weighted.FillWeighted([]float64{0.5}, []float64{2}))

	mw, err := model.New(weighted.Edges())
	require.NoError(t, err)

	require.NoError(t, mw.StackHistogram(filled(t, 0.5)))

	chart, err = plot.ModelChart(plotpage.ThemeDark, plotpage.DefaultStyle(), mw, weighted, plot.DefaultDataModelOptions())
	require.NoError(t, err)
	require.NotNil(t, chart)
}

func TestDataModelPage(t *testing.T) {
	t.Parallel()

	data := filled(t, 0.5, 0.5, 1.5, 2.5, 3.5)

	m, err := model.New(data.Edges())
	require.NoError(t, err)

	require.NoError(t, m.StackHistogram(filled(t, 0.5, 1.5, 2.5, 3.5)))

	page, err := plot.DataModelPage(plotpage.ThemeDark, data, m, plot.DefaultDataModelOptions())
	require.NoError(t, err)
	require.Len(t, page.Sections, 2)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))
	assert.Contains(t, buf.String(), "Data vs model")
}

func TestDataModelPage_AsymmetryDowngradesInferredKind(t *testing.T) {
	t.Parallel()

	data := filled(t, 0.5, 1.5, 2.5)

	m, err := model.New(data.Edges())
	require.NoError(t, err)

	require.NoError(t, m.StackHistogram(filled(t, 0.5, 1.5)))

	// Unweighted data infers the asymmetrical kind; the asymmetry panel
	// quietly uses symmetric variances instead.
	opts := plot.DefaultDataModelOptions()
	opts.Kind = compare.KindAsymmetry

	page, err := plot.DataModelPage(plotpage.ThemeDark, data, m, opts)
	require.NoError(t, err)
	require.Len(t, page.Sections, 2)
}

func TestDataModelPage_ExplicitAsymmetricalRejected(t *testing.T) {
	t.Parallel()

	data := filled(t, 0.5, 1.5, 2.5)

	m, err := model.New(data.Edges())
	require.NoError(t, err)

	require.NoError(t, m.StackHistogram(filled(t, 0.5, 1.5)))

	opts := plot.DefaultDataModelOptions()
	opts.Kind = compare.KindAsymmetry
	opts.DataUncertainty = uncertainty.Asymmetrical

	_, err = plot.DataModelPage(plotpage.ThemeDark, data, m, opts)
	require.ErrorIs(t, err, compare.ErrAsymmetricalUnsupported)
}

func TestDataModelPage_ExactModelPull(t *testing.T) {
	t.Parallel()

	data := filled(t, 0.5, 1.5, 2.5)

	m, err := model.New(data.Edges())
	require.NoError(t, err)

	m.StackFunction(func(float64) float64 { return 1 })

	opts := plot.DefaultDataModelOptions()
	opts.Kind = compare.KindPull
	opts.ModelUncertainty = false

	page, err := plot.DataModelPage(plotpage.ThemeDark, data, m, opts)
	require.NoError(t, err)
	require.Len(t, page.Sections, 2)
}
