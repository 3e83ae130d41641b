package server

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"

	warming "github.com/aouyang1/go-warming"
	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/export"
	"github.com/aouyang1/go-warming/linearmodel"
	"github.com/aouyang1/go-warming/scenario"
	"github.com/aouyang1/go-warming/stats"
)

type datasetResponse struct {
	Columns []string         `json:"columns"`
	Total   int              `json:"total"`
	Rows    []map[string]any `json:"rows"`
}

// handleDataset returns the first limit rows of the baseline. A limit of 0 returns every row.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit", s.opt.PreviewRows)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit < 0 {
		s.writeError(w, r, fmt.Errorf("negative limit %d, %w", limit, ErrBadParam))
		return
	}
	f := s.analyzer.Baseline()
	total := f.Len()
	if limit > 0 {
		f = f.Head(limit)
	}
	s.writeJSON(w, http.StatusOK, datasetResponse{
		Columns: f.Names(),
		Total:   total,
		Rows:    f.Records(),
	})
}

type scenarioResponse struct {
	Offsets      scenario.Offsets  `json:"offsets"`
	Equation     string            `json:"equation"`
	Intercept    number            `json:"intercept"`
	Coefficients map[string]number `json:"coefficients"`
	R2           number            `json:"r_squared"`
	Rows         []map[string]any  `json:"rows"`
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	off, err := queryOffsets(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runScenario(off)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	coef := make(map[string]number, len(res.Model.Coef))
	for name, c := range res.Model.Coef {
		coef[name] = number(c)
	}
	s.writeJSON(w, http.StatusOK, scenarioResponse{
		Offsets:      res.Offsets,
		Equation:     res.Model.ModelEq(),
		Intercept:    number(res.Model.Intercept),
		Coefficients: coef,
		R2:           number(res.Model.R2),
		Rows:         res.Frame.Records(),
	})
}

func (s *Server) runScenario(off scenario.Offsets) (*scenario.Result, error) {
	start := s.clock.Now()
	res, err := s.analyzer.Scenario(off)
	s.metrics.ScenarioDuration.Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.ScenarioErrors.WithLabelValues(scenarioErrReason(err)).Inc()
		return nil, err
	}
	return res, nil
}

func scenarioErrReason(err error) string {
	switch {
	case errors.Is(err, scenario.ErrSingular), errors.Is(err, linearmodel.ErrSingularMatrix):
		return "singular"
	case errors.Is(err, dataset.ErrSchema), errors.Is(err, dataset.ErrNotNumeric):
		return "schema"
	case errors.Is(err, scenario.ErrInvalidOffset):
		return "invalid_offset"
	default:
		return "other"
	}
}

type forecastResponse struct {
	Model        warming.ModelKind `json:"model"`
	Equation     string            `json:"equation"`
	HistoryYears []int             `json:"history_years"`
	Actual       []number          `json:"actual"`
	Years        []int             `json:"years"`
	Forecast     []number          `json:"forecast"`
	Upper        []number          `json:"upper"`
	Lower        []number          `json:"lower"`
	OutlierYears []int             `json:"outlier_years,omitempty"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	model := warming.ModelARIMA
	if raw := q.Get("model"); raw != "" {
		var err error
		if model, err = warming.ParseModelKind(raw); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	horizon, err := s.queryHorizon(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runForecast(model, horizon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, forecastResponse{
		Model:        res.Model,
		Equation:     res.Equation,
		HistoryYears: res.HistoryYears,
		Actual:       numbers(res.Actual),
		Years:        res.Years,
		Forecast:     numbers(res.Forecast),
		Upper:        numbers(res.Upper),
		Lower:        numbers(res.Lower),
		OutlierYears: res.OutlierYears,
	})
}

func (s *Server) runForecast(model warming.ModelKind, horizon int) (*warming.Results, error) {
	start := s.clock.Now()
	res, err := s.analyzer.Forecast(model, horizon)
	s.metrics.ForecastDuration.WithLabelValues(string(model)).Observe(s.clock.Since(start).Seconds())
	return res, err
}

type summaryResponse struct {
	Column   string `json:"column"`
	Count    int    `json:"count"`
	Mean     number `json:"mean"`
	Std      number `json:"std"`
	Min      number `json:"min"`
	Q25      number `json:"25%"`
	Q50      number `json:"50%"`
	Q75      number `json:"75%"`
	Max      number `json:"max"`
	Outliers int    `json:"outliers"`
}

type uploadResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Rows     int               `json:"rows"`
	Columns  []string          `json:"columns"`
	Numeric  []string          `json:"numeric_columns"`
	Preview  []map[string]any  `json:"preview"`
	Describe []summaryResponse `json:"describe"`
}

func newUploadResponse(u *Upload) (uploadResponse, error) {
	sums, err := stats.Describe(u.Frame)
	if err != nil {
		return uploadResponse{}, err
	}
	desc := make([]summaryResponse, 0, len(sums))
	for _, sum := range sums {
		desc = append(desc, summaryResponse{
			Column:   sum.Column,
			Count:    sum.Count,
			Mean:     number(sum.Mean),
			Std:      number(sum.Std),
			Min:      number(sum.Min),
			Q25:      number(sum.Q25),
			Q50:      number(sum.Q50),
			Q75:      number(sum.Q75),
			Max:      number(sum.Max),
			Outliers: sum.Outliers,
		})
	}
	return uploadResponse{
		ID:       u.ID,
		Name:     u.Name,
		Rows:     u.Frame.Len(),
		Columns:  u.Frame.Names(),
		Numeric:  u.Frame.NumericNames(),
		Preview:  u.Frame.Head(uploadPreviewRows).Records(),
		Describe: desc,
	}, nil
}

// receiveUpload parses the multipart file field as csv and stores it
func (s *Server) receiveUpload(w http.ResponseWriter, r *http.Request) (*Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opt.MaxUploadBytes); err != nil {
		return nil, fmt.Errorf("unable to parse upload, %w, %w", err, ErrBadParam)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing csv file field, %w", err)
	}
	defer file.Close()

	f, err := dataset.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s, %w", header.Filename, err)
	}
	u := s.uploads.add(header.Filename, f)
	s.metrics.Uploads.Inc()
	s.logger.Info("stored upload",
		"request_id", requestID(r.Context()),
		"upload_id", u.ID,
		"name", u.Name,
		"rows", f.Len(),
		"columns", f.NumColumns(),
	)
	return u, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	u, err := s.receiveUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := newUploadResponse(u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/uploads/"+u.ID)
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUploadSummary(w http.ResponseWriter, r *http.Request) {
	u, err := s.uploads.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := newUploadResponse(u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type correlationResponse struct {
	Names  []string   `json:"names"`
	Values [][]number `json:"values"`
}

func (s *Server) handleUploadCorrelation(w http.ResponseWriter, r *http.Request) {
	format, err := queryFormat(r.URL.Query(), formatJSON, formatHTML)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.uploads.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	corr, err := stats.Correlation(u.Frame)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == formatHTML {
		s.writeChartPage(w, r, "Correlation Heatmap", func(buf *bytes.Buffer) error {
			return warming.RenderPage(buf, "Correlation Heatmap", warming.HeatMapCorrelation("Correlation Heatmap", corr))
		})
		return
	}
	resp := correlationResponse{Names: corr.Names, Values: make([][]number, len(corr.Values))}
	for i, row := range corr.Values {
		resp.Values[i] = numbers(row)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type histogramResponse struct {
	Column string   `json:"column"`
	Bins   int      `json:"bins"`
	Edges  []number `json:"edges"`
	Counts []number `json:"counts"`
	Labels []string `json:"labels"`
}

func histogram(f *dataset.Frame, column string, bins int) (*stats.Histogram, error) {
	vals, err := f.Floats(column)
	if err != nil {
		return nil, err
	}
	h, err := stats.NewHistogram(vals, bins)
	if err != nil {
		return nil, fmt.Errorf("column %s, %w", column, err)
	}
	return h, nil
}

func (s *Server) handleUploadHistogram(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := queryFormat(q, formatJSON, formatHTML, formatPNG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	column := q.Get("column")
	if column == "" {
		s.writeError(w, r, fmt.Errorf("column is required, %w", ErrBadParam))
		return
	}
	bins, err := queryInt(q, "bins", stats.DefaultBins)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.uploads.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := histogram(u.Frame, column, bins)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	title := "Histogram of " + column
	switch format {
	case formatPNG:
		s.writePNG(w, r, func(buf *bytes.Buffer) error {
			return warming.HistogramPNG(buf, title, h)
		})
	case formatHTML:
		s.writeChartPage(w, r, title, func(buf *bytes.Buffer) error {
			return warming.RenderPage(buf, title, warming.BarHistogram(title, h))
		})
	default:
		s.writeJSON(w, http.StatusOK, histogramResponse{
			Column: column,
			Bins:   bins,
			Edges:  numbers(h.Edges),
			Counts: numbers(h.Counts),
			Labels: h.Labels(),
		})
	}
}

type scatterResponse struct {
	X      string      `json:"x"`
	Y      string      `json:"y"`
	Points [][2]number `json:"points"`
}

func (s *Server) handleUploadScatter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := queryFormat(q, formatJSON, formatHTML, formatPNG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	x, y := q.Get("x"), q.Get("y")
	if x == "" || y == "" {
		s.writeError(w, r, fmt.Errorf("x and y are required, %w", ErrBadParam))
		return
	}
	u, err := s.uploads.get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	xVals, err := u.Frame.Floats(x)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	yVals, err := u.Frame.Floats(y)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	title := fmt.Sprintf("Scatter Plot: %s vs %s", x, y)
	switch format {
	case formatPNG:
		s.writePNG(w, r, func(buf *bytes.Buffer) error {
			return warming.ScatterPNG(buf, title, u.Frame, x, y)
		})
	case formatHTML:
		s.writeChartPage(w, r, title, func(buf *bytes.Buffer) error {
			scatter, err := warming.ScatterColumns(title, u.Frame, x, y)
			if err != nil {
				return err
			}
			return warming.RenderPage(buf, title, scatter)
		})
	default:
		points := make([][2]number, 0, len(xVals))
		for i := range xVals {
			if math.IsNaN(xVals[i]) || math.IsNaN(yVals[i]) || math.IsInf(xVals[i], 0) || math.IsInf(yVals[i], 0) {
				continue
			}
			points = append(points, [2]number{number(xVals[i]), number(yVals[i])})
		}
		s.writeJSON(w, http.StatusOK, scatterResponse{X: x, Y: y, Points: points})
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := s.analyzer.Export(&buf, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Exports.WithLabelValues(string(format)).Inc()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

// writeChartPage buffers a standalone chart page so render errors can still be reported
func (s *Server) writeChartPage(w http.ResponseWriter, r *http.Request, title string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.writeError(w, r, fmt.Errorf("unable to render %s, %w", title, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

func (s *Server) writePNG(w http.ResponseWriter, r *http.Request, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}
