// Package commands implements the histfang subcommands.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/histfang/pkg/compare"
	"github.com/Sumatoshi-tech/histfang/pkg/hist"
	"github.com/Sumatoshi-tech/histfang/pkg/model"
	"github.com/Sumatoshi-tech/histfang/pkg/pdf"
	"github.com/Sumatoshi-tech/histfang/pkg/plot"
	"github.com/Sumatoshi-tech/histfang/pkg/plotpage"
)

const (
	demoDirPerm  = 0o750
	demoFilePerm = 0o600

	demoBins    = 50
	demoLo      = -10.0
	demoHi      = 10.0
	demoEntries = 20000

	// Background is sampled at 10x statistics and scaled down, giving it
	// the small uncertainties of a high-statistics template.
	demoBackgroundOversample = 10
)

// ErrUnknownTheme is returned for themes other than light and dark.
var ErrUnknownTheme = errors.New("theme must be \"light\" or \"dark\"")

// NewDemoCommand creates the demo subcommand. It samples synthetic signal
// and background datasets, builds a model out of them and renders a
// comparison page and a data/model page.
func NewDemoCommand() *cobra.Command {
	var (
		outputDir string
		themeName string
		seed      uint64
		kindName  string
		exact     bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate synthetic datasets and render example pages",
		RunE: func(_ *cobra.Command, _ []string) error {
			theme, err := parseTheme(themeName)
			if err != nil {
				return err
			}

			kind := compare.Kind(kindName)
			if err := kind.Validate(); err != nil {
				return err
			}

			return runDemo(outputDir, theme, seed, kind, !exact)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "histfang-demo", "output directory for HTML files")
	cmd.Flags().StringVar(&themeName, "theme", string(plotpage.ThemeDark), "page theme (light or dark)")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&kindName, "kind", string(compare.KindRatio), "data/model comparison kind")
	cmd.Flags().BoolVar(&exact, "exact-model", false, "treat the model as exact (no model uncertainty)")

	return cmd
}

func parseTheme(name string) (plotpage.Theme, error) {
	switch plotpage.Theme(name) {
	case plotpage.ThemeLight, plotpage.ThemeDark:
		return plotpage.Theme(name), nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrUnknownTheme, name)
	}
}

func runDemo(outputDir string, theme plotpage.Theme, seed uint64, kind compare.Kind, modelUncertainty bool) error {
	if err := os.MkdirAll(outputDir, demoDirPerm); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, m, err := buildDemoModel(seed)
	if err != nil {
		return err
	}

	dmPage, err := plot.DataModelPage(theme, data, m, plot.DataModelOptions{
		Kind:             kind,
		ModelUncertainty: modelUncertainty,
		StackedNames:     []string{"background", "signal"},
	})
	if err != nil {
		return fmt.Errorf("data/model page: %w", err)
	}

	if err := writePage(outputDir, "data_model.html", dmPage); err != nil {
		return err
	}

	cmpPage, err := buildDemoComparison(theme, seed)
	if err != nil {
		return err
	}

	if err := writePage(outputDir, "comparison.html", cmpPage); err != nil {
		return err
	}

	slog.Info("demo pages written", "dir", outputDir)

	return nil
}

// buildDemoModel samples a signal-plus-background dataset and a two
// component model for it.
func buildDemoModel(seed uint64) (*hist.Histogram, *model.Model, error) {
	signal := pdf.Gauss{Mu: 2, Sigma: 1.2}
	background := pdf.Expo{X0: demoLo, Tau: 8}

	signalSampler, err := pdf.NewSampler(signal, demoLo, demoHi, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("signal sampler: %w", err)
	}

	backgroundSampler, err := pdf.NewSampler(background, demoLo, demoHi, seed+1)
	if err != nil {
		return nil, nil, fmt.Errorf("background sampler: %w", err)
	}

	data, err := hist.NewRegular(demoBins, demoLo, demoHi)
	if err != nil {
		return nil, nil, err
	}

	data.Fill(signalSampler.DrawN(demoEntries / 4)...)
	data.Fill(backgroundSampler.DrawN(3 * demoEntries / 4)...)

	signalHist, err := hist.NewRegular(demoBins, demoLo, demoHi)
	if err != nil {
		return nil, nil, err
	}

	signalHist.Fill(signalSampler.DrawN(demoEntries / 4)...)

	backgroundHist, err := hist.NewRegular(demoBins, demoLo, demoHi)
	if err != nil {
		return nil, nil, err
	}

	backgroundHist.Fill(backgroundSampler.DrawN(demoBackgroundOversample * 3 * demoEntries / 4)...)

	m, err := model.New(data.Edges())
	if err != nil {
		return nil, nil, err
	}

	if err := m.StackHistogram(backgroundHist.Scale(1.0 / demoBackgroundOversample)); err != nil {
		return nil, nil, err
	}

	if err := m.StackHistogram(signalHist); err != nil {
		return nil, nil, err
	}

	return data, m, nil
}

// buildDemoComparison renders two independent draws of the same
// distribution against each other.
func buildDemoComparison(theme plotpage.Theme, seed uint64) (*plotpage.Page, error) {
	shape := pdf.CrystalBall{Mu: 0, Sigma: 1.5, Alpha: 1, N: 2}

	s1, err := pdf.NewSampler(shape, demoLo, demoHi, seed+2)
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}

	s2, err := pdf.NewSampler(shape, demoLo, demoHi, seed+3)
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}

	h1, err := hist.NewRegular(demoBins, demoLo, demoHi)
	if err != nil {
		return nil, err
	}

	h2, err := hist.NewRegular(demoBins, demoLo, demoHi)
	if err != nil {
		return nil, err
	}

	h1.Fill(s1.DrawN(demoEntries)...)
	h2.Fill(s2.DrawN(demoEntries)...)

	return plot.ComparisonPage(theme, h1, h2, compare.KindPull, compare.Options{})
}

func writePage(dir, name string, page *plotpage.Page) error {
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, demoFilePerm)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	return nil
}
