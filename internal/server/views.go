package server

import (
	"bytes"
	"html/template"
	"math"
	"net/http"
	"strconv"

	warming "github.com/aouyang1/go-warming"
	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/stats"
)

const layoutHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} | Global Warming Analysis</title>
<script src="{{.EChartsScript}}"></script>
</head>
<body>
<nav>{{range .Nav}}<a href="{{.Path}}"{{if eq . $.Current}} class="active"{{end}}>{{.Title}}</a> {{end}}</nav>
<main>
<h1>{{.Title}}</h1>
{{template "content" .Content}}
</main>
</body>
</html>`

const tableHTML = `{{define "table"}}<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table>{{end}}
{{define "chart"}}{{.Element}}{{.Script}}{{end}}`

const errorHTML = `{{define "content"}}<p class="error">{{.}}</p>{{end}}`

var pageHTML = map[Page]string{
	PageHome: `{{define "content"}}
<h3>Welcome to the Advanced Global Warming Analysis Tool</h3>
<p>This platform allows you to explore and analyze climate data interactively with advanced tools and visualizations.</p>
<h3>Dataset Preview</h3>
<p>{{.Rows}} yearly records from {{.FirstYear}} to {{.LastYear}}.</p>
{{template "table" .Preview}}
{{end}}`,

	PageScenario: `{{define "content"}}
<h3>Customize Greenhouse Gas Changes</h3>
<form method="get" action="/pages/scenario">
<label>CO2 Change (ppm) <input type="range" name="co2" min="{{.Bounds.CO2.Min}}" max="{{.Bounds.CO2.Max}}" step="{{.Bounds.CO2.Step}}" value="{{.Offsets.CO2}}"> {{.Offsets.CO2}}</label><br>
<label>CH4 Change (ppb) <input type="range" name="ch4" min="{{.Bounds.CH4.Min}}" max="{{.Bounds.CH4.Max}}" step="{{.Bounds.CH4.Step}}" value="{{.Offsets.CH4}}"> {{.Offsets.CH4}}</label><br>
<label>N2O Change (ppb) <input type="range" name="n2o" min="{{.Bounds.N2O.Min}}" max="{{.Bounds.N2O.Max}}" step="{{.Bounds.N2O.Step}}" value="{{.Offsets.N2O}}"> {{.Offsets.N2O}}</label><br>
<button type="submit">Apply</button>
</form>
<h3>Scenario Results</h3>
<p><code>{{.Equation}}</code> (R² {{printf "%.4f" .R2}})</p>
{{template "chart" .Chart}}
{{end}}`,

	PageVisualizations: `{{define "content"}}
<h3>Interactive Scatter Plot</h3>
{{template "chart" .Scatter}}
<h3>Correlation Heatmap</h3>
{{template "chart" .Heatmap}}
{{end}}`,

	PageForecast: `{{define "content"}}
<p>Analyze and predict future temperature anomalies using ARIMA and additive trend models.<br>
These forecasts are designed to help visualize long-term climate trends interactively.</p>
<h3>ARIMA Forecast</h3>
{{template "chart" .ARIMA}}
<h3>Additive Trend Forecast</h3>
{{template "chart" .Additive}}
<p>These time series models provide valuable insights into long-term climate trends.</p>
{{end}}`,

	PageUpload: `{{define "content"}}
<p>Upload your CSV dataset to perform interactive analysis.
The uploaded dataset will be previewed, and summary statistics will be generated for further insights.</p>
<form method="post" action="/pages/upload" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,text/csv">
<button type="submit">Upload</button>
</form>
{{with .Upload}}
<h3>Uploaded Dataset Preview: {{.Name}}</h3>
<p>{{.Rows}} rows.</p>
{{template "table" .Preview}}
<h3>Dataset Description</h3>
{{template "table" .Describe}}
<h3>Explore Data Further</h3>
<h4>Correlation Heatmap</h4>
{{if .CorrError}}<p class="error">{{.CorrError}}</p>{{else}}
{{template "table" .Correlation}}
{{template "chart" .Heatmap}}{{end}}
{{if .Numeric}}
<h4>Histogram</h4>
<form method="get" action="/pages/upload">
<input type="hidden" name="id" value="{{.ID}}">
<select name="column">{{range .Numeric}}<option{{if eq . $.Upload.Column}} selected{{end}}>{{.}}</option>{{end}}</select>
<label>Number of bins <input type="number" name="bins" min="5" max="50" value="{{.Bins}}"></label>
<input type="hidden" name="x" value="{{.X}}"><input type="hidden" name="y" value="{{.Y}}">
<button type="submit">Plot</button>
</form>
{{if .HistError}}<p class="error">{{.HistError}}</p>{{else}}{{template "chart" .Histogram}}{{end}}
<h4>Scatter Plot</h4>
<form method="get" action="/pages/upload">
<input type="hidden" name="id" value="{{.ID}}">
<input type="hidden" name="column" value="{{.Column}}"><input type="hidden" name="bins" value="{{.Bins}}">
<select name="x">{{range .Numeric}}<option{{if eq . $.Upload.X}} selected{{end}}>{{.}}</option>{{end}}</select>
<select name="y">{{range .Numeric}}<option{{if eq . $.Upload.Y}} selected{{end}}>{{.}}</option>{{end}}</select>
<button type="submit">Plot</button>
</form>
{{template "chart" .Scatter}}
{{end}}
{{else}}<p>Please upload a CSV file to begin analysis.</p>{{end}}
{{end}}`,

	PageReports: `{{define "content"}}
<p>Export the dataset in various formats for deeper insights.</p>
<h3>Download Options</h3>
<ul>{{range .}}<li><a href="{{.Href}}" download="{{.FileName}}">{{.Label}}</a> ({{.FileName}})</li>{{end}}</ul>
<p>Download your analysis for detailed insights and further analysis.</p>
{{end}}`,

	PageAbout: `{{define "content"}}
<h3>About Eco-Guardians</h3>
<p>We are a team of passionate Computer Engineering students dedicated to creating innovative solutions for a sustainable future.
Our mission is to leverage technology to combat climate change and raise awareness about global warming.</p>
<p>The scenario analysis refits a linear regression of the temperature anomaly on the shifted greenhouse gas
concentrations. The forecasts extend the observed anomaly with an ARIMA(2,1,2) model and an additive trend model with
automatic changepoints.</p>
{{end}}`,
}

type layoutData struct {
	Title         string
	Current       Page
	Nav           []Page
	EChartsScript string
	Content       any
}

type views struct {
	pages map[Page]*template.Template
	err   *template.Template
}

func newViews() *views {
	base := template.Must(template.New("layout").Parse(layoutHTML))
	template.Must(base.Parse(tableHTML))

	v := &views{
		pages: make(map[Page]*template.Template, len(pageHTML)),
		err:   template.Must(template.Must(base.Clone()).Parse(errorHTML)),
	}
	for p, content := range pageHTML {
		v.pages[p] = template.Must(template.Must(base.Clone()).Parse(content))
	}
	return v
}

func (v *views) has(p Page) bool {
	_, exists := v.pages[p]
	return exists
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, p Page, content any) {
	s.render(w, r, s.views.pages[p], http.StatusOK, p, p.Title(), content)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, p Page, err error) {
	status := statusCode(err)
	s.logErr(r, status, err)
	s.render(w, r, s.views.err, status, p, http.StatusText(status), err.Error())
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, t *template.Template, status int, p Page, title string, content any) {
	var buf bytes.Buffer
	err := t.Execute(&buf, layoutData{
		Title:         title,
		Current:       p,
		Nav:           Pages(),
		EChartsScript: warming.EChartsScript,
		Content:       content,
	})
	if err != nil {
		s.logErr(r, http.StatusInternalServerError, err)
		http.Error(w, "unable to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

type table struct {
	Header []string
	Rows   [][]string
}

func frameTable(f *dataset.Frame) table {
	t := table{Header: f.Names(), Rows: make([][]string, f.Len())}
	for i := range t.Rows {
		t.Rows[i] = f.Row(i)
	}
	return t
}

func describeTable(sums []stats.Summary) table {
	t := table{Header: []string{"", "count", "mean", "std", "min", "25%", "50%", "75%", "max", "outliers"}}
	for _, s := range sums {
		row := []string{s.Column, strconv.Itoa(s.Count)}
		for _, v := range []float64{s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max} {
			row = append(row, formatStat(v))
		}
		row = append(row, strconv.Itoa(s.Outliers))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func matrixTable(m *stats.Matrix) table {
	t := table{Header: append([]string{""}, m.Names...)}
	for i, name := range m.Names {
		row := []string{name}
		for _, val := range m.Values[i] {
			row = append(row, formatStat(val))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
