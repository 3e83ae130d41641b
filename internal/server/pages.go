package server

import (
	"errors"
	"fmt"
	"net/http"

	warming "github.com/aouyang1/go-warming"
	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/export"
	"github.com/aouyang1/go-warming/scenario"
	"github.com/aouyang1/go-warming/stats"
)

// uploadPreviewRows is the number of upload rows shown above the summary
const uploadPreviewRows = 5

func (s *Server) servePage(p Page) http.HandlerFunc {
	h := s.pages[p]
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := h(r)
		if err != nil {
			s.renderError(w, r, p, err)
			return
		}
		s.renderPage(w, r, p, content)
	}
}

// handleUnknownPage redirects slugs that differ only in case and 404s the rest
func (s *Server) handleUnknownPage(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePage(r.PathValue("page"))
	if err != nil {
		s.renderError(w, r, PageHome, err)
		return
	}
	target := p.Path()
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

type homeData struct {
	Rows      int
	FirstYear int
	LastYear  int
	Preview   table
}

func (s *Server) homePage(_ *http.Request) (any, error) {
	years := s.analyzer.Years()
	data := homeData{
		Rows:    len(years),
		Preview: frameTable(s.analyzer.Preview(s.opt.PreviewRows)),
	}
	if len(years) > 0 {
		data.FirstYear = years[0]
		data.LastYear = years[len(years)-1]
	}
	return data, nil
}

type scenarioData struct {
	Bounds   Bounds
	Offsets  scenario.Offsets
	Equation string
	R2       float64
	Chart    warming.Snippet
}

func (s *Server) scenarioPage(r *http.Request) (any, error) {
	off, err := queryOffsets(r.URL.Query())
	if err != nil {
		return nil, err
	}
	res, err := s.runScenario(off)
	if err != nil {
		return nil, err
	}
	line, err := warming.LineScenario(res)
	if err != nil {
		return nil, err
	}
	return scenarioData{
		Bounds:   SliderBounds,
		Offsets:  off,
		Equation: res.Model.ModelEq(),
		R2:       res.Model.R2,
		Chart:    warming.NewSnippet(line),
	}, nil
}

type visualizationsData struct {
	Scatter warming.Snippet
	Heatmap warming.Snippet
}

func (s *Server) visualizationsPage(_ *http.Request) (any, error) {
	scatter, err := warming.ScatterColumns(
		"CO2 Concentration vs Temperature Anomaly",
		s.analyzer.Baseline(),
		dataset.ColCO2,
		dataset.ColAnomaly,
	)
	if err != nil {
		return nil, err
	}
	corr, err := s.analyzer.Correlation()
	if err != nil {
		return nil, err
	}
	return visualizationsData{
		Scatter: warming.NewSnippet(scatter),
		Heatmap: warming.NewSnippet(warming.HeatMapCorrelation("Correlation Heatmap", corr)),
	}, nil
}

type forecastData struct {
	ARIMA    warming.Snippet
	Additive warming.Snippet
}

func (s *Server) forecastPage(r *http.Request) (any, error) {
	horizon, err := s.queryHorizon(r.URL.Query())
	if err != nil {
		return nil, err
	}
	arimaRes, err := s.runForecast(warming.ModelARIMA, horizon)
	if err != nil {
		return nil, err
	}
	additiveRes, err := s.runForecast(warming.ModelAdditive, horizon)
	if err != nil {
		return nil, err
	}
	return forecastData{
		ARIMA:    warming.NewSnippet(warming.LineForecast(fmt.Sprintf("ARIMA Forecast (Next %d Years)", horizon), arimaRes)),
		Additive: warming.NewSnippet(warming.LineForecast(fmt.Sprintf("Additive Trend Forecast (Next %d Years)", horizon), additiveRes)),
	}, nil
}

type uploadData struct {
	Upload *uploadView
}

type uploadView struct {
	ID   string
	Name string
	Rows int

	Preview  table
	Describe table

	Correlation table
	Heatmap     warming.Snippet
	CorrError   string

	Numeric   []string
	Column    string
	Bins      int
	Histogram warming.Snippet
	HistError string
	X, Y      string
	Scatter   warming.Snippet
}

func (s *Server) uploadPage(r *http.Request) (any, error) {
	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		return uploadData{}, nil
	}
	u, err := s.uploads.get(id)
	if err != nil {
		return nil, err
	}

	sums, err := stats.Describe(u.Frame)
	if err != nil {
		return nil, err
	}
	view := &uploadView{
		ID:       u.ID,
		Name:     u.Name,
		Rows:     u.Frame.Len(),
		Preview:  frameTable(u.Frame.Head(uploadPreviewRows)),
		Describe: describeTable(sums),
		Numeric:  u.Frame.NumericNames(),
	}

	if corr, err := stats.Correlation(u.Frame); err != nil {
		view.CorrError = err.Error()
	} else {
		view.Correlation = matrixTable(corr)
		view.Heatmap = warming.NewSnippet(warming.HeatMapCorrelation("Correlation Heatmap", corr))
	}

	if len(view.Numeric) == 0 {
		return uploadData{Upload: view}, nil
	}

	view.Column = q.Get("column")
	if view.Column == "" {
		view.Column = view.Numeric[0]
	}
	if view.Bins, err = queryInt(q, "bins", stats.DefaultBins); err != nil {
		return nil, err
	}
	switch hist, err := histogram(u.Frame, view.Column, view.Bins); {
	case errors.Is(err, stats.ErrNoData):
		view.HistError = fmt.Sprintf("%s has no finite values to plot", view.Column)
	case err != nil:
		return nil, err
	default:
		view.Histogram = warming.NewSnippet(warming.BarHistogram("Histogram of "+view.Column, hist))
	}

	view.X, view.Y = q.Get("x"), q.Get("y")
	if view.X == "" {
		view.X = view.Numeric[0]
	}
	if view.Y == "" {
		view.Y = view.Numeric[min(1, len(view.Numeric)-1)]
	}
	scatter, err := warming.ScatterColumns(fmt.Sprintf("Scatter Plot: %s vs %s", view.X, view.Y), u.Frame, view.X, view.Y)
	if err != nil {
		return nil, err
	}
	view.Scatter = warming.NewSnippet(scatter)

	return uploadData{Upload: view}, nil
}

// handleUploadForm stores a browser upload and redirects to its analysis
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	u, err := s.receiveUpload(w, r)
	if err != nil {
		s.renderError(w, r, PageUpload, err)
		return
	}
	http.Redirect(w, r, PageUpload.Path()+"?id="+u.ID, http.StatusSeeOther)
}

type reportLink struct {
	Label    string
	Href     string
	FileName string
}

var formatLabels = map[export.Format]string{
	export.FormatCSV:     "Download CSV",
	export.FormatXLSX:    "Download Excel",
	export.FormatCSVGzip: "Download compressed CSV",
	export.FormatParquet: "Download Parquet",
}

func (s *Server) reportsPage(_ *http.Request) (any, error) {
	links := make([]reportLink, 0, len(export.Formats))
	for _, f := range export.Formats {
		links = append(links, reportLink{
			Label:    formatLabels[f],
			Href:     "/export/" + string(f),
			FileName: f.FileName(),
		})
	}
	return links, nil
}

func (s *Server) aboutPage(_ *http.Request) (any, error) {
	return nil, nil
}
