// Package plot renders histograms, models and comparison panels as
// go-echarts charts and assembles them into plotpage pages.
package plot

import (
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"

	"github.com/Sumatoshi-tech/histfang/pkg/compare"
	"github.com/Sumatoshi-tech/histfang/pkg/hist"
	"github.com/Sumatoshi-tech/histfang/pkg/plotpage"
	"github.com/Sumatoshi-tech/histfang/pkg/uncertainty"
)

const bandOpacity = 0.35

// binLabels formats bin centers as category axis labels.
func binLabels(h *hist.Histogram) []string {
	centers := h.BinCenters()

	labels := make([]string, len(centers))
	for i, c := range centers {
		labels[i] = strconv.FormatFloat(c, 'g', 4, 64)
	}

	return labels
}

// seriesData converts values to chart data, mapping NaN to the echarts
// missing-value marker so broken bins leave gaps instead of zeros.
func seriesData(values []float64) []plotpage.SeriesData {
	out := make([]plotpage.SeriesData, len(values))

	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = "-"
		} else {
			out[i] = v
		}
	}

	return out
}

// NamedHistogram pairs a histogram with its legend entry.
type NamedHistogram struct {
	Name      string
	Histogram *hist.Histogram
}

// HistogramChart renders one or more histograms with shared binning as a
// bar chart. Series colors follow the theme palette.
func HistogramChart(theme plotpage.Theme, style plotpage.Style, yLabel string, hs ...NamedHistogram) *charts.Bar {
	if len(hs) == 0 {
		return nil
	}

	cOpts := plotpage.NewChartOpts(theme)
	palette := plotpage.GetChartPalette(theme)

	series := make([]plotpage.BarSeries, len(hs))
	for i, nh := range hs {
		series[i] = plotpage.BarSeries{
			Name:  nh.Name,
			Data:  seriesData(nh.Histogram.Values()),
			Color: palette.Series[i%len(palette.Series)],
		}
	}

	return plotpage.BuildBarChart(cOpts, style, binLabels(hs[0].Histogram), series, yLabel)
}

// bandSeries encodes an uncertainty band [center-low, center+high] as a
// pair of stacked line series: an invisible base at the lower bound and a
// shaded band of height low+high on top of it.
func bandSeries(name, stack, color string, center, low, high []float64) []plotpage.LineSeries {
	base := make([]float64, len(center))
	width := make([]float64, len(center))

	for i := range center {
		base[i] = center[i] - low[i]
		width[i] = low[i] + high[i]
	}

	return []plotpage.LineSeries{
		{
			Name:       name + " (low)",
			Data:       seriesData(base),
			Color:      "transparent",
			Stack:      stack,
			HideSymbol: true,
		},
		{
			Name:        name,
			Data:        seriesData(width),
			Color:       color,
			Stack:       stack,
			AreaOpacity: bandOpacity,
			HideSymbol:  true,
		},
	}
}

// DataChart renders a histogram as data points with an uncertainty band of
// the given kind.
func DataChart(theme plotpage.Theme, style plotpage.Style, name string, h *hist.Histogram, kind uncertainty.Kind) (*charts.Line, error) {
	low, high, err := uncertainty.Bands(h, kind)
	if err != nil {
		return nil, err
	}

	cOpts := plotpage.NewChartOpts(theme)
	palette := plotpage.GetChartPalette(theme)

	series := []plotpage.LineSeries{
		{
			Name:  name,
			Data:  seriesData(h.Values()),
			Color: palette.Data,
		},
	}
	series = append(series, bandSeries(name+" uncertainty", "band", palette.Band, h.Values(), low, high)...)

	return plotpage.BuildLineChart(cOpts, style, binLabels(h), series, "Entries"), nil
}

// guideValue returns the y position of the comparison guide line, or NaN
// when the kind has no natural reference level.
func guideValue(kind compare.Kind) float64 {
	switch kind {
	case compare.KindRatio:
		return 1
	case compare.KindPull, compare.KindDifference, compare.KindRelativeDifference, compare.KindAsymmetry:
		return 0
	default:
		return math.NaN()
	}
}

// comparisonYLabel names the comparison panel y axis.
func comparisonYLabel(kind compare.Kind) string {
	switch kind {
	case compare.KindRatio:
		return "Ratio"
	case compare.KindPull:
		return "Pull"
	case compare.KindDifference:
		return "Difference"
	case compare.KindRelativeDifference:
		return "Rel. diff."
	case compare.KindAsymmetry:
		return "Asymmetry"
	case compare.KindEfficiency:
		return "Efficiency"
	default:
		return string(kind)
	}
}

// ComparisonChart renders a comparison result as a line of per-bin values
// with its uncertainty band, plus a guide line at the kind's reference
// level. refBand, when non-nil, is drawn as a shaded band around the guide
// line (the split-ratio reference uncertainty).
func ComparisonChart(theme plotpage.Theme, style plotpage.Style, h1 *hist.Histogram, res *compare.Result, kind compare.Kind, refBand []float64) *charts.Line {
	cOpts := plotpage.NewChartOpts(theme)
	palette := plotpage.GetChartPalette(theme)

	series := []plotpage.LineSeries{
		{
			Name:  comparisonYLabel(kind),
			Data:  seriesData(res.Values),
			Color: palette.Data,
		},
	}
	series = append(series, bandSeries("uncertainty", "band", palette.Band, res.Values, res.Lower, res.Upper)...)

	guide := guideValue(kind)
	if !math.IsNaN(guide) {
		flat := make([]float64, len(res.Values))
		for i := range flat {
			flat[i] = guide
		}

		series = append(series, plotpage.LineSeries{
			Name:       "reference",
			Data:       seriesData(flat),
			Color:      palette.Reference,
			HideSymbol: true,
		})

		if refBand != nil {
			series = append(series, bandSeries("reference uncertainty", "refband", palette.Reference, flat, refBand, refBand)...)
		}
	}

	return plotpage.BuildLineChart(cOpts, style, binLabels(h1), series, comparisonYLabel(kind))
}
