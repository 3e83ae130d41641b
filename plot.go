package warming

import (
	"fmt"
	"io"
	"math"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/stats"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	pngWidth  = 900
	pngHeight = 500
)

var pngColor = drawing.ColorFromHex("1f77b4")

// HistogramPNG renders the histogram as a static bar chart image
func HistogramPNG(w io.Writer, title string, h *stats.Histogram) error {
	labels := h.Labels()
	bars := make([]chart.Value, 0, len(h.Counts))
	maxCount := 1.0
	for i, c := range h.Counts {
		bars = append(bars, chart.Value{
			Label: labels[i],
			Value: c,
			Style: chart.Style{FillColor: pngColor, StrokeColor: pngColor},
		})
		maxCount = math.Max(maxCount, c)
	}

	bc := chart.BarChart{
		Title:  title,
		Width:  pngWidth,
		Height: pngHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name:  "Frequency",
			Range: &chart.ContinuousRange{Min: 0, Max: maxCount},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("unable to render histogram png, %w", err)
	}
	return nil
}

// ScatterPNG renders two numeric columns as a static scatter image
func ScatterPNG(w io.Writer, title string, f *dataset.Frame, x, y string) error {
	xVals, err := f.Floats(x)
	if err != nil {
		return err
	}
	yVals, err := f.Floats(y)
	if err != nil {
		return err
	}

	xs := make([]float64, 0, len(xVals))
	ys := make([]float64, 0, len(yVals))
	for i := range xVals {
		if !finitePair(xVals[i], yVals[i]) {
			continue
		}
		xs = append(xs, xVals[i])
		ys = append(ys, yVals[i])
	}
	if len(xs) == 0 {
		return stats.ErrNoData
	}

	graph := chart.Chart{
		Title:  title,
		Width:  pngWidth,
		Height: pngHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12},
		},
		XAxis: chart.XAxis{Name: x},
		YAxis: chart.YAxis{Name: y},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: fmt.Sprintf("%s vs %s", y, x),
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
					DotColor:    pngColor,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("unable to render scatter png, %w", err)
	}
	return nil
}
