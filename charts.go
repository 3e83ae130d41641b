package warming

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/scenario"
	"github.com/aouyang1/go-warming/stats"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
)

var ErrSeriesLenMismatch = errors.New("series names and values have different lengths")

// EChartsScript is the script every chart snippet depends on
const EChartsScript = "https://go-echarts.github.io/go-echarts-assets/assets/" + opts.EchartsJS

// missing is the echarts placeholder for a gap in a series
const missing = "-"

// heatmapColors runs from negative to positive correlation
var heatmapColors = []string{"#313695", "#74add1", "#f7f7f7", "#f46d43", "#a50026"}

func lineValue(v float64) opts.LineData {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return opts.LineData{Value: missing}
	}
	return opts.LineData{Value: v}
}

// finitePair reports whether both coordinates of a scatter point can be drawn
func finitePair(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}

// LineTSeries generates an echart multi-line chart over years. Each slice in y must have the
// same length as years and NaN values are drawn as gaps.
func LineTSeries(title string, seriesName []string, years []int, y [][]float64) (*charts.Line, error) {
	if len(seriesName) != len(y) {
		return nil, ErrSeriesLenMismatch
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: dataset.ColYear}),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		if len(y[i]) != len(years) {
			return nil, fmt.Errorf("series %s has %d values for %d years, %w", seriesName[i], len(y[i]), len(years), ErrSeriesLenMismatch)
		}
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			lineData[i] = append(lineData[i], lineValue(y[i][j]))
		}
	}

	line = line.SetXAxis(years)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}
	return line, nil
}

// LineScenario plots the observed anomaly against the scenario predictions
func LineScenario(res *scenario.Result) (*charts.Line, error) {
	years, err := dataset.Years(res.Frame)
	if err != nil {
		return nil, err
	}
	observed, err := res.Frame.Floats(dataset.ColAnomaly)
	if err != nil {
		return nil, err
	}
	predicted, err := res.Frame.Floats(dataset.ColPredicted)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf(
		"Scenario CO2 %+g ppm, CH4 %+g ppb, N2O %+g ppb",
		res.Offsets.CO2, res.Offsets.CH4, res.Offsets.N2O,
	)
	return LineTSeries(
		title,
		[]string{"Observed", "Predicted"},
		years,
		[][]float64{observed, predicted},
	)
}

// LineForecast plots the history followed by the forecast and its interval
func LineForecast(title string, res *Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    title,
				Subtitle: res.Equation,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: dataset.ColYear}),
		charts.WithYAxisOpts(opts.YAxis{Name: dataset.ColAnomaly}),
	)

	n := len(res.HistoryYears) + len(res.Years)
	years := make([]int, 0, n)
	years = append(years, res.HistoryYears...)
	years = append(years, res.Years...)

	lineDataActual := make([]opts.LineData, 0, n)
	lineDataForecast := make([]opts.LineData, 0, n)
	lineDataUpper := make([]opts.LineData, 0, n)
	lineDataLower := make([]opts.LineData, 0, n)

	gap := opts.LineData{Value: missing}
	for i := range res.HistoryYears {
		lineDataActual = append(lineDataActual, lineValue(res.Actual[i]))
		lineDataForecast = append(lineDataForecast, gap)
		lineDataUpper = append(lineDataUpper, gap)
		lineDataLower = append(lineDataLower, gap)
	}
	for i := range res.Years {
		lineDataActual = append(lineDataActual, gap)
		lineDataForecast = append(lineDataForecast, lineValue(res.Forecast[i]))
		lineDataUpper = append(lineDataUpper, lineValue(res.Upper[i]))
		lineDataLower = append(lineDataLower, lineValue(res.Lower[i]))
	}

	line.SetXAxis(years).
		AddSeries("Actual", lineDataActual).
		AddSeries("Forecast", lineDataForecast).
		AddSeries("Upper", lineDataUpper).
		AddSeries("Lower", lineDataLower)
	return line
}

// ScatterColumns plots two numeric columns against each other. Points are named by year when the
// frame has a year column.
func ScatterColumns(title string, f *dataset.Frame, x, y string) (*charts.Scatter, error) {
	xVals, err := f.Floats(x)
	if err != nil {
		return nil, err
	}
	yVals, err := f.Floats(y)
	if err != nil {
		return nil, err
	}
	names, hasNames := f.Column(dataset.ColYear)

	data := make([]opts.ScatterData, 0, len(xVals))
	for i := range xVals {
		if !finitePair(xVals[i], yVals[i]) {
			continue
		}
		point := opts.ScatterData{Value: []float64{xVals[i], yVals[i]}}
		if hasNames {
			point.Name = names.Format(i)
		}
		data = append(data, point)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Name: x, Type: "value", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: y, Type: "value", Scale: opts.Bool(true)}),
	)
	scatter.AddSeries(fmt.Sprintf("%s vs %s", y, x), data)
	return scatter, nil
}

// HeatMapCorrelation plots a correlation matrix with a diverging color scale over [-1, 1]
func HeatMapCorrelation(title string, m *stats.Matrix) *charts.HeatMap {
	data := make([]opts.HeatMapData, 0, len(m.Names)*len(m.Names))
	for i := range m.Names {
		for j := range m.Names {
			v := m.Values[i][j]
			var val any = missing
			if !math.IsNaN(v) {
				val = math.Round(v*100) / 100
			}
			data = append(data, opts.HeatMapData{Value: [3]any{i, j, val}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.Names, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: heatmapColors},
		}),
	)
	hm.SetXAxis(m.Names).AddSeries("correlation", data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return hm
}

// BarHistogram plots histogram counts labeled by bin range
func BarHistogram(title string, h *stats.Histogram) *charts.Bar {
	labels := h.Labels()
	data := make([]opts.BarData, 0, len(h.Counts))
	for _, c := range h.Counts {
		data = append(data, opts.BarData{Value: c})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency"}),
	)
	bar.SetXAxis(labels).AddSeries("count", data)
	return bar
}

// Snippet is a chart split into the markup and script that render it inside a larger page
type Snippet struct {
	Element template.HTML
	Script  template.HTML
}

type snippetRenderer interface {
	RenderSnippet() render.ChartSnippet
}

// NewSnippet renders a chart for embedding. The page must also load EChartsScript.
func NewSnippet(c snippetRenderer) Snippet {
	s := c.RenderSnippet()
	return Snippet{
		Element: template.HTML(s.Element),
		Script:  template.HTML(s.Script),
	}
}

// RenderPage writes the charts as a standalone html page
func RenderPage(w io.Writer, title string, c ...components.Charter) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(c...)
	return page.Render(w)
}

// PlotForecast writes both forecasts of the analyzer as a standalone html page
func (a *Analyzer) PlotForecast(w io.Writer, horizon int) error {
	arimaRes, err := a.Forecast(ModelARIMA, horizon)
	if err != nil {
		return err
	}
	additiveRes, err := a.Forecast(ModelAdditive, horizon)
	if err != nil {
		return err
	}
	return RenderPage(
		w,
		"Temperature Anomaly Forecast",
		LineForecast("ARIMA Forecast", arimaRes),
		LineForecast("Additive Trend Forecast", additiveRes),
	)
}
