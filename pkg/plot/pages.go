package plot

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"

	"github.com/Sumatoshi-tech/histfang/pkg/compare"
	"github.com/Sumatoshi-tech/histfang/pkg/hist"
	"github.com/Sumatoshi-tech/histfang/pkg/model"
	"github.com/Sumatoshi-tech/histfang/pkg/plotpage"
	"github.com/Sumatoshi-tech/histfang/pkg/uncertainty"
)

// ComparisonPage builds a page with the two histograms overlaid on top and
// the requested comparison panel below.
func ComparisonPage(theme plotpage.Theme, h1, h2 *hist.Histogram, kind compare.Kind, opts compare.Options) (*plotpage.Page, error) {
	res, err := compare.Compare(h1, h2, kind, opts)
	if err != nil {
		return nil, err
	}

	var refBand []float64
	if kind == compare.KindRatio && opts.RatioUncertainty != compare.RatioUncorrelated {
		refBand = compare.ReferenceBand(h2)
	}

	page := plotpage.NewPage(
		fmt.Sprintf("Histogram comparison (%s)", kind),
		"Bin-wise comparison of two histograms with shared binning.",
	).WithTheme(theme)

	overlay := HistogramChart(theme, page.Style, "Entries",
		NamedHistogram{Name: "h1", Histogram: h1},
		NamedHistogram{Name: "h2", Histogram: h2},
	)

	page.Add(
		plotpage.Section{
			Title: "Histograms",
			Chart: plotpage.WrapChart(overlay),
		},
		plotpage.Section{
			Title: comparisonYLabel(kind),
			Chart: plotpage.WrapChart(ComparisonChart(theme, plotpage.CompactStyle(), h1, res, kind, refBand)),
		},
	)

	return page, nil
}

// DataModelOptions configures DataModelPage.
type DataModelOptions struct {
	// Kind selects the comparison panel. Defaults to ratio.
	Kind compare.Kind

	// RatioUncertainty selects the ratio error treatment. Defaults to the
	// split policy.
	RatioUncertainty compare.RatioUncertainty

	// DataUncertainty selects the data error bars. When empty, unweighted
	// data gets asymmetrical Poisson intervals and weighted data gets
	// symmetrical ones.
	DataUncertainty uncertainty.Kind

	// ModelUncertainty includes the model component variances. When false
	// the model is treated as exact.
	ModelUncertainty bool

	// StackedNames and UnstackedNames label the model components in
	// order. Missing entries get positional names.
	StackedNames   []string
	UnstackedNames []string
}

// DefaultDataModelOptions returns the standard data/model settings.
func DefaultDataModelOptions() DataModelOptions {
	return DataModelOptions{
		Kind:             compare.KindRatio,
		RatioUncertainty: compare.RatioSplit,
		ModelUncertainty: true,
	}
}

func (o DataModelOptions) withDefaults(data *hist.Histogram) DataModelOptions {
	if o.Kind == "" {
		o.Kind = compare.KindRatio
	}

	if o.RatioUncertainty == "" {
		o.RatioUncertainty = compare.RatioSplit
	}

	if o.DataUncertainty == "" {
		if data.Weighting() == hist.Unweighted {
			o.DataUncertainty = uncertainty.Asymmetrical
		} else {
			o.DataUncertainty = uncertainty.Symmetrical
		}
	}

	return o
}

func componentName(names []string, prefix string, i int) string {
	if i < len(names) {
		return names[i]
	}

	return fmt.Sprintf("%s %d", prefix, i+1)
}

// ModelChart renders the model components as stacked bars (stacked group)
// and overlaid lines (unstacked group), with the data drawn on top as
// points with its uncertainty band.
func ModelChart(theme plotpage.Theme, style plotpage.Style, m *model.Model, data *hist.Histogram, o DataModelOptions) (*charts.Bar, error) {
	o = o.withDefaults(data)

	cOpts := plotpage.NewChartOpts(theme)
	palette := plotpage.GetChartPalette(theme)

	labels := binLabels(data)

	bars := make([]plotpage.BarSeries, 0, len(m.StackedSeries()))
	for i, values := range m.StackedSeries() {
		bars = append(bars, plotpage.BarSeries{
			Name:  componentName(o.StackedNames, "stacked", i),
			Data:  seriesData(values),
			Color: palette.Series[i%len(palette.Series)],
			Stack: "model",
		})
	}

	bar := plotpage.BuildBarChart(cOpts, style, labels, bars, "Entries")

	lines := make([]plotpage.LineSeries, 0, len(m.UnstackedSeries())+3)

	offset := len(m.StackedSeries())
	for i, values := range m.UnstackedSeries() {
		lines = append(lines, plotpage.LineSeries{
			Name:       componentName(o.UnstackedNames, "unstacked", i),
			Data:       seriesData(values),
			Color:      palette.Series[(offset+i)%len(palette.Series)],
			HideSymbol: true,
		})
	}

	// The stacked bars alone understate the model when unstacked
	// components exist, so the full total gets its own line.
	if m.NumComponents() > len(m.StackedSeries()) {
		totalValues, _, aggErr := m.Aggregate(false)
		if aggErr != nil {
			return nil, aggErr
		}

		lines = append(lines, plotpage.LineSeries{
			Name:       "model",
			Data:       seriesData(totalValues),
			Color:      palette.Reference,
			Step:       "middle",
			HideSymbol: true,
		})
	}

	low, high, err := uncertainty.Bands(data, o.DataUncertainty)
	if err != nil {
		return nil, err
	}

	lines = append(lines, plotpage.LineSeries{
		Name:  "data",
		Data:  seriesData(data.Values()),
		Color: palette.Data,
	})
	lines = append(lines, bandSeries("data uncertainty", "databand", palette.Band, data.Values(), low, high)...)

	line := charts.NewLine()
	line.SetXAxis(labels)

	for _, s := range lines {
		plotpage.AddLineSeries(line, s)
	}

	bar.Overlap(line)

	return bar, nil
}

// DataModelPage builds the full data/model page: the model chart on top
// and the data-to-model comparison panel below. The comparison uses the
// model total as reference, with zero variances when the model is treated
// as exact.
func DataModelPage(theme plotpage.Theme, data *hist.Histogram, m *model.Model, o DataModelOptions) (*plotpage.Page, error) {
	explicitDataKind := o.DataUncertainty != ""
	o = o.withDefaults(data)

	total, err := m.Total(o.ModelUncertainty)
	if err != nil {
		return nil, err
	}

	cmpOpts := compare.Options{
		RatioUncertainty: o.RatioUncertainty,
		H1Uncertainty:    o.DataUncertainty,
	}

	if o.Kind == compare.KindAsymmetry || o.Kind == compare.KindEfficiency {
		// These kinds use the symmetric variances directly. An inferred
		// asymmetrical kind is downgraded; an explicitly requested one is
		// a contradiction the caller must resolve.
		if explicitDataKind && o.DataUncertainty.Asymmetric() {
			return nil, fmt.Errorf("%w: %s", compare.ErrAsymmetricalUnsupported, o.Kind)
		}

		cmpOpts.H1Uncertainty = uncertainty.Symmetrical
	}

	res, err := compare.Compare(data, total, o.Kind, cmpOpts)
	if err != nil {
		return nil, err
	}

	var refBand []float64
	if o.Kind == compare.KindRatio && o.RatioUncertainty != compare.RatioUncorrelated && o.ModelUncertainty {
		refBand = compare.ReferenceBand(total)
	}

	page := plotpage.NewPage(
		"Data vs model",
		"Stacked and unstacked model components against observed data.",
	).WithTheme(theme)

	modelChart, err := ModelChart(theme, page.Style, m, data, o)
	if err != nil {
		return nil, err
	}

	page.Add(
		plotpage.Section{
			Title: "Model",
			Chart: plotpage.WrapChart(modelChart),
		},
		plotpage.Section{
			Title: comparisonYLabel(o.Kind),
			Chart: plotpage.WrapChart(ComparisonChart(theme, plotpage.CompactStyle(), data, res, o.Kind, refBand)),
		},
	)

	return page, nil
}
