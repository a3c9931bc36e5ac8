package plotpage_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/histfang/pkg/plotpage"
)

func TestNewPage_Defaults(t *testing.T) {
	t.Parallel()

	page := plotpage.NewPage("Title", "Description")

	assert.Equal(t, "Histfang", page.ProjectName)
	assert.Equal(t, plotpage.ThemeDark, page.Theme)
	assert.Empty(t, page.Sections)
}

func TestPage_Render(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildBarChart(nil, plotpage.DefaultStyle(), []string{"0", "1"}, []plotpage.BarSeries{
		{Name: "data", Data: []plotpage.SeriesData{1.0, 2.0}},
	}, "Entries")

	page := plotpage.NewPage("Test page", "A test")
	page.Add(plotpage.Section{
		Title: "Chart",
		Chart: plotpage.WrapChart(chart),
		Hint:  plotpage.Hint{Title: "Reading", Items: []string{"one", "two"}},
	})

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	html := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(html), "<!DOCTYPE html>"))
	assert.Contains(t, html, "Test page")
	assert.Contains(t, html, "Histfang")
	assert.Contains(t, html, "echart-box")
	assert.Contains(t, html, "Reading")
	assert.NotContains(t, html, `class="container"`)
}

func TestPage_RenderLightTheme(t *testing.T) {
	t.Parallel()

	page := plotpage.NewPage("T", "").WithTheme(plotpage.ThemeLight)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	assert.NotContains(t, buf.String(), `class="dark"`)
}

func TestGetThemeConfig(t *testing.T) {
	t.Parallel()

	dark := plotpage.GetThemeConfig(plotpage.ThemeDark)
	light := plotpage.GetThemeConfig(plotpage.ThemeLight)

	assert.NotEqual(t, dark.Background, light.Background)

	// Unknown themes fall back to light.
	assert.Equal(t, light, plotpage.GetThemeConfig(plotpage.Theme("bogus")))
}

func TestGetChartPalette(t *testing.T) {
	t.Parallel()

	p := plotpage.GetChartPalette(plotpage.ThemeDark)

	assert.NotEmpty(t, p.Series)
	assert.NotEmpty(t, p.Data)
	assert.NotEmpty(t, p.Reference)
	assert.NotEmpty(t, p.Band)
}
