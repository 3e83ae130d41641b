package server

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aouyang1/go-warming/scenario"
)

var (
	ErrUnknownPage   = errors.New("unknown page")
	ErrUnhandledPage = errors.New("page has no handler")
)

// Page enumerates the dashboard pages
type Page int

const (
	PageHome Page = iota
	PageScenario
	PageVisualizations
	PageForecast
	PageUpload
	PageReports
	PageAbout
	numPages
)

var pageSlugs = [numPages]string{
	"home",
	"scenario",
	"visualizations",
	"forecast",
	"upload",
	"reports",
	"about",
}

var pageTitles = [numPages]string{
	"Home",
	"Scenario Analysis",
	"Advanced Visualizations",
	"Time Series Forecast",
	"Upload & Analyze Data",
	"Generate Reports",
	"About",
}

// Pages lists every page in navigation order
func Pages() []Page {
	res := make([]Page, 0, numPages)
	for p := PageHome; p < numPages; p++ {
		res = append(res, p)
	}
	return res
}

// String returns the url slug of the page
func (p Page) String() string {
	if p < 0 || p >= numPages {
		return fmt.Sprintf("page(%d)", int(p))
	}
	return pageSlugs[p]
}

// Title is the navigation label of the page
func (p Page) Title() string {
	if p < 0 || p >= numPages {
		return p.String()
	}
	return pageTitles[p]
}

// Path is the url the page is served from
func (p Page) Path() string {
	return "/pages/" + p.String()
}

// ParsePage resolves a page by its slug, ignoring case
func ParsePage(slug string) (Page, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for p, s := range pageSlugs {
		if s == slug {
			return Page(p), nil
		}
	}
	return 0, fmt.Errorf("%q, %w", slug, ErrUnknownPage)
}

// Bound is the range and step of a scenario slider
type Bound struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Clamp limits v to the bound
func (b Bound) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// Bounds holds the slider range of every gas
type Bounds struct {
	CO2 Bound `json:"co2"`
	CH4 Bound `json:"ch4"`
	N2O Bound `json:"n2o"`
}

// SliderBounds are the offsets the scenario page accepts
var SliderBounds = Bounds{
	CO2: Bound{Min: -10, Max: 10, Step: 0.5},
	CH4: Bound{Min: -50, Max: 50, Step: 5},
	N2O: Bound{Min: -5, Max: 5, Step: 0.5},
}

// Clamp limits every offset to its slider range
func (b Bounds) Clamp(off scenario.Offsets) scenario.Offsets {
	return scenario.Offsets{
		CO2: b.CO2.Clamp(off.CO2),
		CH4: b.CH4.Clamp(off.CH4),
		N2O: b.N2O.Clamp(off.N2O),
	}
}
